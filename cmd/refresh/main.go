// Command refresh is the ops CLI against a running profitboard server:
// clear the aggregation cache, inspect its status, or pre-warm the channel
// views after a deploy.
package main

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func newBaseURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "base-url",
		Usage:   "Base URL of the profitboard server",
		Value:   "http://localhost:8080",
		EnvVars: []string{"PROFITBOARD_URL"},
	}
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "refresh",
		Usage: "Manage the profitboard aggregation cache",
		Commands: []*cli.Command{
			{
				Name:   "clear",
				Usage:  "Bump the cache generation, forcing fresh data on next view",
				Flags:  []cli.Flag{newBaseURLFlag()},
				Action: runClear,
			},
			{
				Name:   "status",
				Usage:  "Show cache generation and per-bucket freshness",
				Flags:  []cli.Flag{newBaseURLFlag()},
				Action: runStatus,
			},
			{
				Name:   "warm",
				Usage:  "Request every channel view so caches are hot",
				Flags:  []cli.Flag{newBaseURLFlag()},
				Action: runWarm,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func httpClient() *http.Client {
	return &http.Client{Timeout: 5 * time.Minute}
}

func runClear(c *cli.Context) error {
	url := c.String("base-url") + "/api/v1/cache/clear"
	resp, err := httpClient().Post(url, "application/json", nil)
	if err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("clear cache: %s: %s", resp.Status, body)
	}
	fmt.Println(string(body))
	return nil
}

func runStatus(c *cli.Context) error {
	url := c.String("base-url") + "/api/v1/cache/status"
	resp, err := httpClient().Get(url)
	if err != nil {
		return fmt.Errorf("cache status: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cache status: %s: %s", resp.Status, body)
	}
	fmt.Println(string(body))
	return nil
}

func runWarm(c *cli.Context) error {
	base := c.String("base-url")
	for _, channel := range []string{"d2c", "retail", "gopuff"} {
		url := base + "/api/v1/views/" + channel
		start := time.Now()
		resp, err := httpClient().Get(url)
		if err != nil {
			return fmt.Errorf("warm %s: %w", channel, err)
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("warm %s: %s", channel, resp.Status)
		}
		log.Printf("warmed %s view in %v", channel, time.Since(start))
	}
	return nil
}
