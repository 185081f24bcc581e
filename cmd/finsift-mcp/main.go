package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// productRecord mirrors the Finsift API record model.
type productRecord struct {
	Provider             string `json:"provider"`
	ProductName          string `json:"product_name"`
	ProductType          string `json:"product_type"`
	APR                  string `json:"apr"`
	Fees                 string `json:"fees"`
	Term                 string `json:"term"`
	Eligibility          string `json:"eligibility"`
	SampleMonthlyPayment string `json:"sample_monthly_payment"`
	SourceURL            string `json:"source_url"`
	ExtractedAt          string `json:"extracted_at"`
}

// extractResponse mirrors the Finsift extract API response.
type extractResponse struct {
	Success bool           `json:"success"`
	Skipped bool           `json:"skipped"`
	Record  *productRecord `json:"record"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// classifyResponse mirrors the Finsift classify API response.
type classifyResponse struct {
	Success bool   `json:"success"`
	Accept  bool   `json:"accept"`
	Reason  string `json:"reason"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// crawlResponse mirrors the Finsift crawl API response.
type crawlResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// crawlStatusResponse mirrors the Finsift crawl status API response.
type crawlStatusResponse struct {
	ID      string           `json:"id"`
	Status  string           `json:"status"`
	Fetched int              `json:"fetched"`
	Skipped int              `json:"skipped"`
	Failed  int              `json:"failed"`
	Records []*productRecord `json:"records"`
}

func main() {
	apiURL := os.Getenv("FINSIFT_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	apiKey := os.Getenv("FINSIFT_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "FINSIFT_API_KEY is required")
		os.Exit(1)
	}

	s := server.NewMCPServer(
		"finsift",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	extractProductTool := mcp.NewTool("extract_product",
		mcp.WithDescription("Extract a structured financial product record (provider, product name, type, APR, fees, term, eligibility) from a web page. Pages that are not product pages are skipped."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the product page to extract"),
		),
		mcp.WithString("css_selector",
			mcp.Description("Optional CSS selector to scope extraction to part of the page"),
		),
		mcp.WithBoolean("redact_pii",
			mcp.Description("Replace emails, phone numbers and SSNs in extracted text with placeholder tokens (default: true)"),
		),
	)
	s.AddTool(extractProductTool, handleExtractProduct(apiURL, apiKey))

	classifyPageTool := mcp.NewTool("classify_page",
		mcp.WithDescription("Check whether a URL points at a financial product page without running full extraction. Returns the accept decision and which signal fired."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the page to classify"),
		),
	)
	s.AddTool(classifyPageTool, handleClassifyPage(apiURL, apiKey))

	crawlProductsTool := mcp.NewTool("crawl_products",
		mcp.WithDescription("Crawl a financial site starting from seed URLs, following product links, and return one structured record per product page found."),
		mcp.WithArray("start_urls",
			mcp.Required(),
			mcp.Description("Seed URLs to crawl from"),
		),
		mcp.WithNumber("max_requests",
			mcp.Description("Maximum number of pages to fetch (default: 50, max: 500)"),
		),
		mcp.WithNumber("max_depth",
			mcp.Description("Maximum link depth from the seed URLs (default: 3, max: 10)"),
		),
		mcp.WithBoolean("follow_internal_only",
			mcp.Description("Only follow links on the seed hosts (default: true)"),
		),
	)
	s.AddTool(crawlProductsTool, handleCrawlProducts(apiURL, apiKey))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

// apiPost sends a POST request to the Finsift API and returns the response body.
func apiPost(ctx context.Context, client *http.Client, apiURL, apiKey, path string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", apiKey)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

// pollJobCompletion polls a job endpoint until status is no longer "processing" or context is cancelled.
func pollJobCompletion(ctx context.Context, client *http.Client, apiURL, apiKey, endpoint string) ([]byte, error) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL+endpoint, nil)
			if err != nil {
				return nil, fmt.Errorf("create poll request: %w", err)
			}
			req.Header.Set("X-API-Key", apiKey)

			resp, err := client.Do(req)
			if err != nil {
				return nil, fmt.Errorf("poll request failed: %w", err)
			}

			body, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			if err != nil {
				return nil, fmt.Errorf("read poll response: %w", err)
			}

			// Quick check if still processing.
			var status struct {
				Status string `json:"status"`
			}
			if err := json.Unmarshal(body, &status); err != nil {
				return nil, fmt.Errorf("parse poll status: %w", err)
			}

			if status.Status != "processing" {
				return body, nil
			}
		}
	}
}

// formatRecord renders one product record as readable text.
func formatRecord(rec *productRecord) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Provider: %s\n", rec.Provider))
	sb.WriteString(fmt.Sprintf("Product: %s (%s)\n", rec.ProductName, rec.ProductType))
	if rec.APR != "" {
		sb.WriteString(fmt.Sprintf("APR: %s\n", rec.APR))
	}
	if rec.Term != "" {
		sb.WriteString(fmt.Sprintf("Term: %s\n", rec.Term))
	}
	if rec.SampleMonthlyPayment != "" {
		sb.WriteString(fmt.Sprintf("Sample monthly payment: %s\n", rec.SampleMonthlyPayment))
	}
	if rec.Fees != "" {
		sb.WriteString(fmt.Sprintf("Fees: %s\n", rec.Fees))
	}
	if rec.Eligibility != "" {
		sb.WriteString(fmt.Sprintf("Eligibility: %s\n", rec.Eligibility))
	}
	sb.WriteString(fmt.Sprintf("Source: %s (extracted %s)\n", rec.SourceURL, rec.ExtractedAt))
	return sb.String()
}

func handleExtractProduct(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 120 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		payload := map[string]interface{}{
			"url": url,
		}
		if selector := request.GetString("css_selector", ""); selector != "" {
			payload["css_selector"] = selector
		}
		args := request.GetArguments()
		if redactPII, ok := args["redact_pii"]; ok {
			payload["redact_pii"] = redactPII
		}

		respBody, err := apiPost(ctx, client, apiURL, apiKey, "/api/v1/extract", payload)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("extract request failed: %v", err)), nil
		}

		var extResp extractResponse
		if err := json.Unmarshal(respBody, &extResp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse extract response: %v", err)), nil
		}

		if !extResp.Success {
			errMsg := "extraction failed"
			if extResp.Error != nil {
				errMsg = fmt.Sprintf("[%s] %s", extResp.Error.Code, extResp.Error.Message)
			}
			return mcp.NewToolResultError(errMsg), nil
		}

		if extResp.Skipped || extResp.Record == nil {
			return mcp.NewToolResultText("Page skipped: not recognised as a financial product page."), nil
		}

		return mcp.NewToolResultText(formatRecord(extResp.Record)), nil
	}
}

func handleClassifyPage(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 120 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		respBody, err := apiPost(ctx, client, apiURL, apiKey, "/api/v1/classify", map[string]string{"url": url})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("classify request failed: %v", err)), nil
		}

		var clResp classifyResponse
		if err := json.Unmarshal(respBody, &clResp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse classify response: %v", err)), nil
		}

		if !clResp.Success {
			errMsg := "classification failed"
			if clResp.Error != nil {
				errMsg = fmt.Sprintf("[%s] %s", clResp.Error.Code, clResp.Error.Message)
			}
			return mcp.NewToolResultError(errMsg), nil
		}

		if clResp.Accept {
			return mcp.NewToolResultText(fmt.Sprintf("Accept: product page (signal: %s)", clResp.Reason)), nil
		}
		return mcp.NewToolResultText("Skip: not a product page"), nil
	}
}

func handleCrawlProducts(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 600 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		startURLs, err := request.RequireStringSlice("start_urls")
		if err != nil {
			return mcp.NewToolResultError("start_urls is required and must be an array of strings"), nil
		}

		payload := map[string]interface{}{
			"start_urls": startURLs,
		}
		args := request.GetArguments()
		if maxRequests, ok := args["max_requests"]; ok {
			payload["max_requests"] = maxRequests
		}
		if maxDepth, ok := args["max_depth"]; ok {
			payload["max_depth"] = maxDepth
		}
		if internalOnly, ok := args["follow_internal_only"]; ok {
			payload["follow_internal_only"] = internalOnly
		}

		// POST to create crawl job.
		respBody, err := apiPost(ctx, client, apiURL, apiKey, "/api/v1/crawl", payload)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("crawl request failed: %v", err)), nil
		}

		var crResp crawlResponse
		if err := json.Unmarshal(respBody, &crResp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse crawl response: %v", err)), nil
		}

		if crResp.ID == "" {
			return mcp.NewToolResultError("crawl job creation failed"), nil
		}

		// Poll for completion.
		resultBody, err := pollJobCompletion(ctx, client, apiURL, apiKey, "/api/v1/crawl/"+crResp.ID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("polling crawl job failed: %v", err)), nil
		}

		var statusResp crawlStatusResponse
		if err := json.Unmarshal(resultBody, &statusResp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse crawl status: %v", err)), nil
		}

		// Format results.
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("Crawl %s: %s (%d fetched, %d skipped, %d failed)\n\n",
			statusResp.ID, statusResp.Status, statusResp.Fetched, statusResp.Skipped, statusResp.Failed))

		for i, rec := range statusResp.Records {
			sb.WriteString(fmt.Sprintf("--- Record %d ---\n%s\n", i+1, formatRecord(rec)))
		}
		if len(statusResp.Records) == 0 {
			sb.WriteString("No product records found.\n")
		}

		return mcp.NewToolResultText(sb.String()), nil
	}
}
