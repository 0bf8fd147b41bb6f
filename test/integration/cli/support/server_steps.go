package support

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"

	"github.com/Nic0w/zbars/internal/server"
	"github.com/cucumber/godog"
)

// theScanServerIsRunning starts the HTTP API in-process.
func (tc *TestContext) theScanServerIsRunning() error {
	return tc.startServer(server.Config{})
}

func (tc *TestContext) theScanServerIsRunningWithUploadLimit(mb int) error {
	return tc.startServer(server.Config{MaxUploadMB: int64(mb)})
}

func (tc *TestContext) startServer(cfg server.Config) error {
	srv, err := server.NewServer(cfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	mux := http.NewServeMux()
	srv.SetupRoutes(mux)
	tc.HTTPServer = httptest.NewServer(mux)
	return nil
}

func (tc *TestContext) iGET(path string) error {
	if tc.HTTPServer == nil {
		return fmt.Errorf("server is not running")
	}
	resp, err := tc.HTTPServer.Client().Get(tc.HTTPServer.URL + path)
	if err != nil {
		return err
	}
	return tc.recordResponse(resp)
}

// iUpload posts a temp-dir file as the "image" field of /scan/image.
func (tc *TestContext) iUpload(name, query string) error {
	if tc.HTTPServer == nil {
		return fmt.Errorf("server is not running")
	}
	data, err := os.ReadFile(tc.TempPath(name))
	if err != nil {
		return err
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("image", name)
	if err != nil {
		return err
	}
	if _, err := part.Write(data); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	url := tc.HTTPServer.URL + "/scan/image"
	if query != "" {
		url += "?" + query
	}
	resp, err := tc.HTTPServer.Client().Post(url, w.FormDataContentType(), &body)
	if err != nil {
		return err
	}
	return tc.recordResponse(resp)
}

func (tc *TestContext) iUploadPlain(name string) error {
	return tc.iUpload(name, "")
}

func (tc *TestContext) recordResponse(resp *http.Response) error {
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	tc.LastHTTPStatusCode = resp.StatusCode
	tc.LastHTTPResponse = string(body)
	tc.LastHTTPHeaders = map[string]string{}
	for k := range resp.Header {
		tc.LastHTTPHeaders[k] = resp.Header.Get(k)
	}
	return nil
}

func (tc *TestContext) theResponseStatusShouldBe(code int) error {
	if tc.LastHTTPStatusCode != code {
		return fmt.Errorf("status %d, want %d\nBody: %s", tc.LastHTTPStatusCode, code, tc.LastHTTPResponse)
	}
	return nil
}

func (tc *TestContext) theResponseShouldContain(text string) error {
	if !strings.Contains(tc.LastHTTPResponse, text) {
		return fmt.Errorf("response does not contain %q\nBody: %s", text, tc.LastHTTPResponse)
	}
	return nil
}

func (tc *TestContext) theResponseHeaderShouldBe(name, value string) error {
	if got := tc.LastHTTPHeaders[http.CanonicalHeaderKey(name)]; got != value {
		return fmt.Errorf("header %s is %q, want %q", name, got, value)
	}
	return nil
}

// theResponseShouldDecodeTo checks the first symbol of a JSON scan response.
func (tc *TestContext) theResponseShouldDecodeTo(typ, data string) error {
	var resp server.ScanResponse
	if err := json.Unmarshal([]byte(tc.LastHTTPResponse), &resp); err != nil {
		return fmt.Errorf("response is not JSON: %w", err)
	}
	if !resp.Success || resp.Result == nil || len(resp.Result.Symbols) == 0 {
		return fmt.Errorf("no symbols in response: %s", tc.LastHTTPResponse)
	}
	sym := resp.Result.Symbols[0]
	if sym.Type != typ || sym.Data != data {
		return fmt.Errorf("decoded %s:%s, want %s:%s", sym.Type, sym.Data, typ, data)
	}
	return nil
}

// RegisterServerSteps registers HTTP API steps.
func (tc *TestContext) RegisterServerSteps(sc *godog.ScenarioContext) {
	sc.Step(`^the scan server is running$`, tc.theScanServerIsRunning)
	sc.Step(`^the scan server is running with a (\d+) MB upload limit$`, tc.theScanServerIsRunningWithUploadLimit)
	sc.Step(`^I GET "([^"]*)"$`, tc.iGET)
	sc.Step(`^I upload "([^"]*)" to the scan endpoint$`, tc.iUploadPlain)
	sc.Step(`^I upload "([^"]*)" to the scan endpoint with "([^"]*)"$`, tc.iUpload)
	sc.Step(`^the response status should be (\d+)$`, tc.theResponseStatusShouldBe)
	sc.Step(`^the response should contain "([^"]*)"$`, tc.theResponseShouldContain)
	sc.Step(`^the response header "([^"]*)" should be "([^"]*)"$`, tc.theResponseHeaderShouldBe)
	sc.Step(`^the response should decode to "([^"]*)" "([^"]*)"$`, tc.theResponseShouldDecodeTo)
}
