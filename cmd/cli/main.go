package main

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"os"
	"strconv"

	"github.com/ZilDuck/nft-marketplace/internal/config"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

var apiBase string

func main() {
	config.Init("cli")

	apiBase = "http://127.0.0.1:" + config.Get().ApiPort

	app := &cli.App{
		Commands: []*cli.Command{
			{
				Name:   "sales",
				Usage:  "List open sales",
				Action: listSales,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "owner", Value: "", Usage: "Filter by owner account"},
					&cli.StringFlag{Name: "contract", Value: "", Usage: "Filter by NFT contract"},
					&cli.IntFlag{Name: "from", Value: 0, Usage: "Pagination offset"},
					&cli.IntFlag{Name: "limit", Value: 25, Usage: "Pagination limit"},
				},
			},
			{
				Name:      "sale",
				Usage:     "Show a single sale",
				ArgsUsage: "<contractAddr> <tokenId>",
				Action:    showSale,
			},
			{
				Name:   "auctions",
				Usage:  "List open auctions",
				Action: listAuctions,
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "from", Value: 0, Usage: "Pagination offset"},
					&cli.IntFlag{Name: "limit", Value: 25, Usage: "Pagination limit"},
				},
			},
			{
				Name:      "storage",
				Usage:     "Show an account's storage deposit balance",
				ArgsUsage: "<account>",
				Action:    showStorage,
			},
			{
				Name:      "priceWithFees",
				Usage:     "Gross up a price by the protocol and origin fees",
				ArgsUsage: "<price>",
				Action:    showPriceWithFees,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "origins", Value: "", Usage: "Origin fees as JSON, eg {\"broker\":100}"},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		zap.L().With(zap.Error(err)).Fatal("Failed to start CLI")
	}
}

func listSales(c *cli.Context) error {
	query := url.Values{}
	query.Set("from", fmt.Sprintf("%d", c.Int("from")))
	query.Set("limit", fmt.Sprintf("%d", c.Int("limit")))

	path := "/sales"
	if owner := c.String("owner"); owner != "" {
		path = "/sales/owner/" + url.PathEscape(owner)
	} else if contract := c.String("contract"); contract != "" {
		path = "/sales/contract/" + url.PathEscape(contract)
	}

	return get(path + "?" + query.Encode())
}

func showSale(c *cli.Context) error {
	if c.Args().Len() != 2 {
		return cli.Exit("expected <contractAddr> <tokenId>", 1)
	}
	return get("/sales/" + url.PathEscape(c.Args().Get(0)) + "/" + url.PathEscape(c.Args().Get(1)))
}

func listAuctions(c *cli.Context) error {
	return get(fmt.Sprintf("/auctions?from=%d&limit=%d", c.Int("from"), c.Int("limit")))
}

func showStorage(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return cli.Exit("expected <account>", 1)
	}
	return get("/storage/paid/" + url.PathEscape(c.Args().First()))
}

func showPriceWithFees(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return cli.Exit("expected <price>", 1)
	}
	price, err := strconv.ParseUint(c.Args().First(), 10, 64)
	if err != nil {
		return cli.Exit("price must be an unsigned integer", 1)
	}

	body := map[string]interface{}{"price": price}
	if origins := c.String("origins"); origins != "" {
		body["origins"] = json.RawMessage(origins)
	}

	return post("/price-with-fees", body)
}

func get(path string) error {
	resp, err := httpClient().Get(apiBase + path)
	if err != nil {
		zap.L().With(zap.Error(err), zap.String("path", path)).Error("Request failed")
		return err
	}

	return printResponse(resp)
}

func post(path string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	resp, err := httpClient().Post(apiBase+path, "application/json", body)
	if err != nil {
		zap.L().With(zap.Error(err), zap.String("path", path)).Error("Request failed")
		return err
	}

	return printResponse(resp)
}

func httpClient() *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.Logger = nil
	client.RetryMax = 2

	return client
}

func printResponse(resp *http.Response) error {
	defer resp.Body.Close()

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var pretty interface{}
	if err := json.Unmarshal(body, &pretty); err != nil {
		fmt.Println(string(body))
		return nil
	}
	out, _ := json.MarshalIndent(pretty, "", "  ")
	fmt.Println(string(out))

	return nil
}
