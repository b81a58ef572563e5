package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leftmike/gcodeproc/config"
	"github.com/leftmike/gcodeproc/internal/logging"
)

const testChain = `
processors:
  - name: CommentProcessor
  - name: WhitespaceProcessor
  - name: EmptyLineRemover
  - name: CommandLengthProcessor
    args:
      length: 12
`

const testProgram = `G21 G90 (setup)
G0 X0 Y0

G1 X10 F100
G1 Y10
`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	chain, err := config.Parse([]byte(testChain), "yaml")
	require.NoError(t, err)
	handler, err := newHandler(chain, logging.NewNop(), prometheus.NewRegistry())
	require.NoError(t, err)

	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, url, body string) (int, string, string) {
	t.Helper()

	resp, err := http.Post(url, "text/plain", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, resp.Header.Get("Content-Type"), string(data)
}

func TestServeProcess(t *testing.T) {
	ts := newTestServer(t)

	cases := []struct {
		path   string
		body   string
		status int
		want   string
	}{
		{
			path:   "/process",
			body:   testProgram,
			status: http.StatusOK,
			want:   "G21G90\nG0X0Y0\nG1X10F100\nG1Y10\n",
		},
		{
			path:   "/process",
			body:   "",
			status: http.StatusOK,
			want:   "",
		},
		{
			path:   "/process?from_line=3",
			body:   testProgram,
			status: http.StatusOK,
			want:   "G21G90G91.1G94G54G17\nG0X0Y0\nS0F0\nF100S0G1X10\nG1Y10\n",
		},
		{
			path:   "/process?from_line=x",
			body:   testProgram,
			status: http.StatusBadRequest,
		},
		{
			path:   "/process?from_line=-1",
			body:   testProgram,
			status: http.StatusBadRequest,
		},
		{
			path:   "/process",
			body:   "G1 X10.12345 Y20.12345",
			status: http.StatusUnprocessableEntity,
		},
		{
			path:   "/process",
			body:   "G1 X1 F1 F2",
			status: http.StatusUnprocessableEntity,
		},
	}

	for _, c := range cases {
		status, ctype, body := post(t, ts.URL+c.path, c.body)
		if !assert.Equal(t, c.status, status, "%s: %q: %s", c.path, c.body, body) {
			continue
		}
		if c.status == http.StatusOK {
			assert.Equal(t, "text/plain; charset=utf-8", ctype)
			assert.Equal(t, c.want, body, "%s: %q", c.path, c.body)
		}
	}
}

func TestServePreview(t *testing.T) {
	ts := newTestServer(t)

	status, ctype, body := post(t, ts.URL+"/preview?title=pocket", testProgram)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "text/html; charset=utf-8", ctype)
	assert.Contains(t, body, `document.title = "pocket";`)
	assert.Contains(t, body, `"maxPos":{"x":10,"y":10,"z":0}`)
	assert.Contains(t, body, `{"linearTo":{"x":10,"y":10,"z":0}}`)

	status, _, _ = post(t, ts.URL+"/preview", "G2 X10")
	assert.Equal(t, http.StatusUnprocessableEntity, status)
}

func TestServeProcessors(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/processors")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var infos []processorInfo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&infos))
	require.Len(t, infos, len(config.Names()))

	byName := map[string]processorInfo{}
	for _, info := range infos {
		byName[info.Name] = info
	}
	arc, ok := byName["ArcExpander"]
	require.True(t, ok)
	assert.NotEmpty(t, arc.Help)
	require.NotEmpty(t, arc.Args)
	assert.Equal(t, "segment_length", arc.Args[0].Name)
	assert.Empty(t, byName["CommentProcessor"].Args)
}

func TestServeMetrics(t *testing.T) {
	ts := newTestServer(t)

	status, _, _ := post(t, ts.URL+"/process", testProgram)
	require.Equal(t, http.StatusOK, status)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	body := string(data)
	assert.Contains(t, body,
		`gcodeproc_stage_commands_in_total{processor="EmptyLineRemover",stage="2"} 5`)
	assert.Contains(t, body,
		`gcodeproc_stage_commands_out_total{processor="EmptyLineRemover",stage="2"} 4`)
}
