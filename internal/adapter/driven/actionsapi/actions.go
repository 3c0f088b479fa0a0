package actionsapi

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"

	"github.com/ericfisherdev/actionpanel/internal/domain/model"
)

// ListActions fetches one page from GET /actions/admin-list. The search
// parameter is sent only when the term is non-empty. The body goes through
// the normalizer, so an unrecognized envelope yields an empty page.
func (c *Client) ListActions(ctx context.Context, q model.PageQuery) (model.PageResult[model.ActionItem], error) {
	params := url.Values{}
	params.Set("pageNumber", strconv.Itoa(q.PageNumber))
	params.Set("pageSize", strconv.Itoa(q.PageSize))
	if q.SearchTerm != "" {
		params.Set("search", q.SearchTerm)
	}

	target := endpoint(c.apiBase, "actions", "admin-list") + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return model.EmptyPage[model.ActionItem](), fmt.Errorf("creating list request: %w", err)
	}

	body, err := do(c.http, req)
	if err != nil {
		return model.EmptyPage[model.ActionItem](), err
	}

	page, shape := normalizeRaw(body)
	if c.envelopes != nil {
		c.envelopes.ObserveEnvelope(shape)
	}
	if shape == ShapeUnmatched || shape == ShapeInvalidRaw {
		logUnmatchedEnvelope(req.URL.Path, shape, len(body))
	}
	return page, nil
}

// CreateAction validates a and uploads it to POST /actions/admin-add as a
// multipart form. The multipart writer owns the boundary, so the request
// carries its Content-Type and the gateway leaves it alone.
func (c *Client) CreateAction(ctx context.Context, a model.NewAction) error {
	if err := a.Validate(); err != nil {
		return err
	}

	body, contentType, err := encodeNewAction(a)
	if err != nil {
		return fmt.Errorf("encoding action form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint(c.apiBase, "actions", "admin-add"), body)
	if err != nil {
		return fmt.Errorf("creating action request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	if _, err := do(c.http, req); err != nil {
		return fmt.Errorf("creating action %q: %w", a.Name, err)
	}
	return nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func encodeNewAction(a model.NewAction) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	fields := []struct{ name, value string }{
		{"name", strings.TrimSpace(a.Name)},
		{"description", strings.TrimSpace(a.Description)},
		{"status", a.StatusValue()},
		{"color", strings.TrimSpace(a.Color)},
	}
	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, "", err
		}
	}

	filename := a.IconName
	if filename == "" {
		filename = "icon"
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="icon"; filename="%s"`, quoteEscaper.Replace(filename)))
	header.Set("Content-Type", a.IconContentType())

	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(a.Icon); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}
