package caldav

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const calendarsBody = `<?xml version="1.0" encoding="utf-8"?>
<d:multistatus xmlns:d="DAV:" xmlns:c="urn:ietf:params:xml:ns:caldav">
  <d:response>
    <d:href>/dav/user/</d:href>
    <d:propstat>
      <d:prop><d:resourcetype><d:collection/></d:resourcetype></d:prop>
      <d:status>HTTP/1.1 200 OK</d:status>
    </d:propstat>
  </d:response>
  <d:response>
    <d:href>/dav/user/tasks/</d:href>
    <d:propstat>
      <d:prop>
        <d:resourcetype><d:collection/><c:calendar/></d:resourcetype>
        <d:displayname>Tasks</d:displayname>
      </d:prop>
      <d:status>HTTP/1.1 200 OK</d:status>
    </d:propstat>
  </d:response>
  <d:response>
    <d:href>/dav/user/hidden/</d:href>
    <d:propstat>
      <d:prop><d:resourcetype><c:calendar/></d:resourcetype></d:prop>
      <d:status>HTTP/1.1 404 Not Found</d:status>
    </d:propstat>
  </d:response>
</d:multistatus>`

const todosBody = `<?xml version="1.0" encoding="utf-8"?>
<d:multistatus xmlns:d="DAV:" xmlns:c="urn:ietf:params:xml:ns:caldav">
  <d:response>
    <d:href>/dav/user/tasks/a.ics</d:href>
    <d:propstat>
      <d:prop>
        <d:getetag>"1"</d:getetag>
        <c:calendar-data>BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//test//EN
BEGIN:VTODO
UID:a
SUMMARY:Water plants
PRIORITY:2
END:VTODO
END:VCALENDAR
</c:calendar-data>
      </d:prop>
      <d:status>HTTP/1.1 200 OK</d:status>
    </d:propstat>
  </d:response>
  <d:response>
    <d:href>/dav/user/tasks/broken.ics</d:href>
    <d:propstat>
      <d:prop><c:calendar-data>not a calendar</c:calendar-data></d:prop>
      <d:status>HTTP/1.1 200 OK</d:status>
    </d:propstat>
  </d:response>
</d:multistatus>`

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "1", r.Header.Get("Depth"))
		switch {
		case r.Method == "PROPFIND" && r.URL.Path == "/dav/user/":
			assert.Contains(t, string(body), "resourcetype")
			w.WriteHeader(http.StatusMultiStatus)
			_, _ = io.WriteString(w, calendarsBody)
		case r.Method == "REPORT" && r.URL.Path == "/dav/user/tasks/":
			assert.Contains(t, string(body), `name="VTODO"`)
			w.WriteHeader(http.StatusMultiStatus)
			_, _ = io.WriteString(w, todosBody)
		default:
			http.Error(w, "nope", http.StatusNotFound)
		}
	}))
}

func TestListCalendars(t *testing.T) {
	srv := newServer(t)
	defer srv.Close()

	c := NewClient(srv.Client())
	cals, err := c.ListCalendars(context.Background(), srv.URL+"/dav/user/", Credentials{})
	require.NoError(t, err)
	require.Len(t, cals, 1)
	assert.Equal(t, srv.URL+"/dav/user/tasks/", cals[0].URL)
	assert.Equal(t, "Tasks", cals[0].Name)
}

func TestListTodosSkipsBrokenObjects(t *testing.T) {
	srv := newServer(t)
	defer srv.Close()

	c := NewClient(srv.Client())
	items, err := c.ListTodos(context.Background(), Calendar{URL: srv.URL + "/dav/user/tasks/"}, Credentials{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	m := items[0].Map()
	assert.Equal(t, "a", m["uid"])
	assert.Equal(t, "Water plants", m["summary"])
	assert.Equal(t, "2", m["priority"])
}

func TestNonMultiStatusIsError(t *testing.T) {
	srv := newServer(t)
	defer srv.Close()

	c := NewClient(srv.Client())
	_, err := c.ListCalendars(context.Background(), srv.URL+"/missing/", Credentials{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.NotContains(t, err.Error(), "/missing/")
}

func TestCredentialsApply(t *testing.T) {
	tests := []struct {
		name  string
		creds Credentials
		want  string
	}{
		{"basic", Credentials{Kind: AuthBasic, Username: "u", Password: "p"}, "Basic dTpw"},
		{"bearer", Credentials{Kind: AuthBearer, Token: "tok"}, "Bearer tok"},
		{"anonymous", Credentials{Kind: AuthBearer}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest("PROPFIND", "http://example.com/", nil)
			require.NoError(t, err)
			tt.creds.apply(req)
			assert.Equal(t, tt.want, req.Header.Get("Authorization"))
		})
	}
}

func TestRedactURL(t *testing.T) {
	got := redactURL("https://dav.example.com/remote.php/dav/calendars/me?token=secret")
	assert.Equal(t, "https://dav.example.com/...(redacted)", got)
	assert.False(t, strings.Contains(redactURL("::bad"), "bad"))
}
