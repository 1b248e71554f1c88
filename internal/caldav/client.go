// Package caldav is a minimal CalDAV client: it lists the calendars below
// an endpoint and pulls their VTODO items. Nothing is written back.
package caldav

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"tasktimer/internal/ics"
	appLog "tasktimer/internal/log"
)

// AuthKind selects how requests are authenticated.
type AuthKind int

const (
	AuthBearer AuthKind = iota
	AuthBasic
)

// Credentials are attached to every request. A Bearer credential with an
// empty token sends no Authorization header at all.
type Credentials struct {
	Kind     AuthKind
	Username string
	Password string
	Token    string
}

func (c Credentials) apply(req *http.Request) {
	switch c.Kind {
	case AuthBasic:
		req.SetBasicAuth(c.Username, c.Password)
	case AuthBearer:
		if c.Token != "" {
			req.Header.Set("Authorization", "Bearer "+c.Token)
		}
	}
}

// Calendar is a calendar collection discovered below an endpoint.
type Calendar struct {
	URL  string
	Name string
}

// Client talks CalDAV over plain HTTP. It sets no overall timeout; callers
// bound requests through the context.
type Client struct {
	http *http.Client
}

// NewClient returns a Client using hc, or http.DefaultClient when hc is nil.
func NewClient(hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{http: hc}
}

const propfindCalendars = `<?xml version="1.0" encoding="utf-8"?>
<d:propfind xmlns:d="DAV:" xmlns:c="urn:ietf:params:xml:ns:caldav">
  <d:prop>
    <d:resourcetype/>
    <d:displayname/>
  </d:prop>
</d:propfind>`

const reportTodos = `<?xml version="1.0" encoding="utf-8"?>
<c:calendar-query xmlns:d="DAV:" xmlns:c="urn:ietf:params:xml:ns:caldav">
  <d:prop>
    <d:getetag/>
    <c:calendar-data/>
  </d:prop>
  <c:filter>
    <c:comp-filter name="VCALENDAR">
      <c:comp-filter name="VTODO"/>
    </c:comp-filter>
  </c:filter>
</c:calendar-query>`

type multistatus struct {
	XMLName   xml.Name   `xml:"DAV: multistatus"`
	Responses []response `xml:"DAV: response"`
}

type response struct {
	Href      string     `xml:"DAV: href"`
	Propstats []propstat `xml:"DAV: propstat"`
}

type propstat struct {
	Prop   prop   `xml:"DAV: prop"`
	Status string `xml:"DAV: status"`
}

type prop struct {
	ResourceType resourceType `xml:"DAV: resourcetype"`
	DisplayName  string       `xml:"DAV: displayname"`
	CalendarData string       `xml:"urn:ietf:params:xml:ns:caldav calendar-data"`
}

type resourceType struct {
	Calendar *struct{} `xml:"urn:ietf:params:xml:ns:caldav calendar"`
}

// okProps returns the props of all propstats reporting a 2xx status.
// A propstat without a status line is treated as successful.
func (r response) okProps() []prop {
	out := make([]prop, 0, len(r.Propstats))
	for _, ps := range r.Propstats {
		if ps.Status != "" && !strings.Contains(ps.Status, " 2") {
			continue
		}
		out = append(out, ps.Prop)
	}
	return out
}

// ListCalendars issues a depth-1 PROPFIND on endpoint and returns every
// child collection whose resourcetype includes a CalDAV calendar.
func (c *Client) ListCalendars(ctx context.Context, endpoint string, creds Credentials) ([]Calendar, error) {
	ms, err := c.do(ctx, "PROPFIND", endpoint, propfindCalendars, creds)
	if err != nil {
		return nil, err
	}

	base, err := url.Parse(endpoint)
	if err != nil {
		return nil, err
	}

	calendars := make([]Calendar, 0)
	for _, r := range ms.Responses {
		for _, p := range r.okProps() {
			if p.ResourceType.Calendar == nil {
				continue
			}
			href, err := url.Parse(strings.TrimSpace(r.Href))
			if err != nil {
				appLog.Error("caldav: bad calendar href", err, "href", r.Href)
				continue
			}
			calendars = append(calendars, Calendar{
				URL:  base.ResolveReference(href).String(),
				Name: p.DisplayName,
			})
			break
		}
	}

	appLog.Debug("caldav calendars listed", "url", redactURL(endpoint), "count", len(calendars))
	return calendars, nil
}

// ListTodos runs a calendar-query REPORT for VTODO components on cal and
// returns the raw items. Objects whose calendar-data fails to parse are
// logged and skipped.
func (c *Client) ListTodos(ctx context.Context, cal Calendar, creds Credentials) ([]ics.RawItem, error) {
	ms, err := c.do(ctx, "REPORT", cal.URL, reportTodos, creds)
	if err != nil {
		return nil, err
	}

	items := make([]ics.RawItem, 0)
	for _, r := range ms.Responses {
		for _, p := range r.okProps() {
			data := strings.TrimSpace(p.CalendarData)
			if data == "" {
				continue
			}
			todos, err := ics.ParseTodos([]byte(data))
			if err != nil {
				appLog.Error("caldav: calendar-data parse failed", err, "href", r.Href)
				continue
			}
			items = append(items, todos...)
		}
	}

	appLog.Debug("caldav todos listed", "url", redactURL(cal.URL), "count", len(items))
	return items, nil
}

func (c *Client) do(ctx context.Context, method, target, body string, creds Credentials) (*multistatus, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, bytes.NewBufferString(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/xml; charset=utf-8")
	req.Header.Set("Depth", "1")
	creds.apply(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusMultiStatus {
		return nil, fmt.Errorf("caldav: %s %s: %w", method, redactURL(target), errors.New(resp.Status))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var ms multistatus
	if err := xml.Unmarshal(data, &ms); err != nil {
		return nil, fmt.Errorf("caldav: decode multistatus: %w", err)
	}
	return &ms, nil
}

// redactURL hides paths and query strings, which often embed secrets.
//
//	https://example.com/dav/private?token=abcd -> https://example.com/...(redacted)
func redactURL(u string) string {
	parsed, err := url.Parse(u)
	if err != nil || parsed.Host == "" {
		return "caldav://...(redacted)"
	}
	return parsed.Scheme + "://" + parsed.Host + "/...(redacted)"
}
