package httptransport

import (
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseMaybeJSONMasksPayID(t *testing.T) {
	got := parseMaybeJSON([]byte(`{"name":"Alice","payid":"0400 000 000","profiles":{"Bob":{"payid":"bob@example.com","avatar":""},"Cara":{"payid":""}}}`))
	want := map[string]any{
		"name":  "Alice",
		"payid": "***",
		"profiles": map[string]any{
			"Bob":  map[string]any{"payid": "***", "avatar": ""},
			"Cara": map[string]any{"payid": ""},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("redacted body mismatch (-want +got):\n%s", diff)
	}
	if got := parseMaybeJSON([]byte("not json")); got != "not json" {
		t.Fatalf("plain text body = %v", got)
	}
}

func TestCheckAdminAuth(t *testing.T) {
	cases := []struct {
		name   string
		header string
		value  string
		want   bool
	}{
		{"admin header", "X-Admin-Key", "s3cret", true},
		{"bearer", "Authorization", "Bearer s3cret", true},
		{"wrong key", "X-Admin-Key", "nope", false},
		{"bearer wrong", "Authorization", "Bearer nope", false},
		{"basic scheme", "Authorization", "Basic s3cret", false},
		{"missing", "", "", false},
	}
	for _, tc := range cases {
		r := httptest.NewRequest("GET", "/api/admin/ledger", nil)
		if tc.header != "" {
			r.Header.Set(tc.header, tc.value)
		}
		if got := CheckAdminAuth(r, "s3cret"); got != tc.want {
			t.Fatalf("%s: CheckAdminAuth = %v, want %v", tc.name, got, tc.want)
		}
	}
}
