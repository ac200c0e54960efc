package mcpserver

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

const (
	assetDir     = "attachments"
	maxAssetSize = 10 << 20 // 10 MB
)

// imageTypes maps accepted MIME types to the extension they are stored with.
var imageTypes = map[string]string{
	"image/png":     ".png",
	"image/jpeg":    ".jpg",
	"image/gif":     ".gif",
	"image/webp":    ".webp",
	"image/svg+xml": ".svg",
}

var unsafeNameRe = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

type assetResult struct {
	URL string `json:"url"`
	Tag string `json:"tag"`
}

var assetClient = &http.Client{
	Timeout: 30 * time.Second,
	CheckRedirect: func(req *http.Request, via []*http.Request) error {
		if len(via) >= 5 {
			return fmt.Errorf("too many redirects")
		}
		return checkHost(req.URL.Hostname())
	},
}

func (s *Server) uploadAsset(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	src, err := req.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var (
		data []byte
		ext  string
	)
	if strings.HasPrefix(src, "data:") {
		data, ext, err = fromDataURI(src)
	} else {
		data, ext, err = download(ctx, src)
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	sniffed, err := sniffImage(data)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if ext == "" {
		ext = sniffed
	}

	name := assetName(req.GetString("filename", ""), src, ext)
	stored := s.freeAssetName(name)
	if err := s.store.Write(assetDir+"/"+stored, data); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to save attachment: %v", err)), nil
	}

	u := "/" + assetDir + "/" + stored
	out, _ := json.Marshal(assetResult{
		URL: u,
		Tag: fmt.Sprintf(`<img src="%s" alt="%s">`, u, strings.TrimSuffix(stored, path.Ext(stored))),
	})
	return mcp.NewToolResultText(string(out)), nil
}

// fromDataURI decodes data:<mime>;base64,<payload>.
func fromDataURI(uri string) ([]byte, string, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return nil, "", fmt.Errorf("invalid data URI")
	}
	mime, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return nil, "", fmt.Errorf("only base64 data URIs are supported")
	}
	ext, ok := imageTypes[mime]
	if !ok {
		return nil, "", fmt.Errorf("unsupported type %q", mime)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		if data, err = base64.RawStdEncoding.DecodeString(payload); err != nil {
			return nil, "", fmt.Errorf("invalid base64 data: %w", err)
		}
	}
	if len(data) > maxAssetSize {
		return nil, "", fmt.Errorf("file too large: %d bytes (max %d)", len(data), maxAssetSize)
	}
	return data, ext, nil
}

// download fetches an http(s) URL, refusing loopback and metadata hosts.
func download(ctx context.Context, raw string) ([]byte, string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, "", fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if err := checkHost(u.Hostname()); err != nil {
		return nil, "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, raw, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := assetClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("download failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("download failed: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAssetSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("download failed: %w", err)
	}
	if len(data) > maxAssetSize {
		return nil, "", fmt.Errorf("file too large (max %d bytes)", maxAssetSize)
	}
	mime, _, _ := strings.Cut(resp.Header.Get("Content-Type"), ";")
	return data, imageTypes[strings.TrimSpace(mime)], nil
}

func checkHost(host string) error {
	if host == "metadata.google.internal" {
		return fmt.Errorf("blocked host %s", host)
	}
	ip := net.ParseIP(host)
	if ip == nil {
		ips, err := net.LookupIP(host)
		if err != nil || len(ips) == 0 {
			return nil //nolint:nilerr // the client reports DNS failures
		}
		ip = ips[0]
	}
	if ip.IsLoopback() || ip.IsLinkLocalUnicast() {
		return fmt.Errorf("blocked host %s", host)
	}
	return nil
}

// sniffImage checks that data is one of the accepted image types and
// returns its extension.
func sniffImage(data []byte) (string, error) {
	head := data[:min(len(data), 1024)]
	if bytes.Contains(head, []byte("<svg")) {
		return ".svg", nil
	}
	mime, _, _ := strings.Cut(http.DetectContentType(data), ";")
	if ext, ok := imageTypes[mime]; ok && ext != ".svg" {
		return ext, nil
	}
	return "", fmt.Errorf("content is not a supported image (detected %s)", mime)
}

// assetName picks a safe file name: the requested one, else the URL's last
// segment, else a random one. The extension always follows the content.
func assetName(requested, src, ext string) string {
	name := requested
	if name == "" && !strings.HasPrefix(src, "data:") {
		if u, err := url.Parse(src); err == nil {
			name = path.Base(u.Path)
		}
	}
	name = strings.TrimSuffix(path.Base(name), path.Ext(name))
	name = strings.Trim(unsafeNameRe.ReplaceAllString(name, "_"), "._")
	if name == "" {
		name = uuid.NewString()
	}
	return name + ext
}

// freeAssetName adds a counter to name until it is unused.
func (s *Server) freeAssetName(name string) string {
	ext := path.Ext(name)
	base := strings.TrimSuffix(name, ext)
	candidate := name
	for i := 1; s.store.Exists(assetDir + "/" + candidate); i++ {
		candidate = fmt.Sprintf("%s-%d%s", base, i, ext)
	}
	return candidate
}
