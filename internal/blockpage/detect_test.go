package blockpage

import (
	"net/http"
	"testing"
)

func TestDetect_Cloudflare(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		headers map[string][]string
		body    []byte
		want    bool
	}{
		{
			name:    "server header",
			status:  http.StatusForbidden,
			headers: map[string][]string{"Server": {"cloudflare"}},
			want:    true,
		},
		{
			name:   "turnstile body",
			status: http.StatusServiceUnavailable,
			body:   []byte(`<div class="cf-turnstile"></div>`),
			want:   true,
		},
		{
			name:    "ordinary 403",
			status:  http.StatusForbidden,
			headers: map[string][]string{"Server": {"nginx"}},
			body:    []byte("Forbidden"),
			want:    false,
		},
		{
			name:    "200 never flagged",
			status:  http.StatusOK,
			headers: map[string][]string{"Server": {"cloudflare"}},
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, src := Detect(tt.status, tt.headers, tt.body, DefaultDetectors())
			if got != tt.want {
				t.Errorf("Detect() = %v, want %v", got, tt.want)
			}
			if tt.want && src != "Cloudflare" {
				t.Errorf("expected Cloudflare source, got %q", src)
			}
		})
	}
}

func TestDetect_Akamai(t *testing.T) {
	body := []byte("Access Denied. Reference #18.1234")
	got, src := Detect(http.StatusForbidden, nil, body, DefaultDetectors())
	if !got || src != "Akamai" {
		t.Errorf("expected Akamai detection, got %v %q", got, src)
	}
}

func TestDetect_DataDomeHeader(t *testing.T) {
	headers := map[string][]string{"x-datadome": {"protected"}}
	got, src := Detect(http.StatusForbidden, headers, nil, DefaultDetectors())
	if !got || src != "DataDome" {
		t.Errorf("expected DataDome detection via lowercase header, got %v %q", got, src)
	}
}

func TestDetect_PerimeterX(t *testing.T) {
	body := []byte(`<script src="https://client.perimeterx.net/px.js"></script>`)
	got, src := Detect(http.StatusForbidden, nil, body, DefaultDetectors())
	if !got || src != "PerimeterX" {
		t.Errorf("expected PerimeterX detection, got %v %q", got, src)
	}
}

func TestDetect_CleanResponse(t *testing.T) {
	got, src := Detect(http.StatusOK, map[string][]string{"Server": {"apache"}}, []byte("<html>welcome</html>"), DefaultDetectors())
	if got || src != "" {
		t.Errorf("expected no detection, got %v %q", got, src)
	}
}
