package gee

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(&http.Client{Timeout: 5 * time.Second}, "test-project", "test-token")
	c.baseURL = srv.URL
	return c, srv
}

func TestCollectionSize(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/projects/test-project/value:compute" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("unexpected auth header %q", got)
		}

		var body struct {
			Expression json.RawMessage `json:"expression"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if !strings.Contains(string(body.Expression), "Collection.size") {
			t.Errorf("expected Collection.size in expression, got %s", body.Expression)
		}

		json.NewEncoder(w).Encode(map[string]interface{}{"result": 42})
	})

	col := LoadCollection("MODIS/061/MOD11A1")
	n, err := c.CollectionSize(context.Background(), col)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 42 {
		t.Fatalf("expected size 42, got %d", n)
	}
}

func TestSampleMean(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"result": map[string]interface{}{
				"LST_Day_1km": 31.76,
			},
		})
	})

	img := LoadCollection("MODIS/061/MOD11A1").Median().Select("LST_Day_1km")
	values, err := c.SampleMean(context.Background(), img, Point(101.68, 3.14), 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	v, ok := values["LST_Day_1km"]
	if !ok || v == nil {
		t.Fatalf("expected LST_Day_1km value, got %v", values)
	}
	if *v != 31.76 {
		t.Fatalf("expected 31.76, got %f", *v)
	}
}

func TestSampleMeanMaskedBand(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		// Fully masked sample windows come back as explicit nulls.
		w.Write([]byte(`{"result": {"LST_Day_1km": null}}`))
	})

	img := LoadCollection("MODIS/061/MOD11A1").Median().Select("LST_Day_1km")
	values, err := c.SampleMean(context.Background(), img, Point(0, 0), 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v := values["LST_Day_1km"]; v != nil {
		t.Fatalf("expected nil for masked band, got %f", *v)
	}
}

func TestThumbnail(t *testing.T) {
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/projects/test-project/thumbnails" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		var body struct {
			Expression json.RawMessage `json:"expression"`
			FileFormat string          `json:"fileFormat"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if body.FileFormat != "PNG" {
			t.Errorf("expected PNG file format, got %q", body.FileFormat)
		}
		if !strings.Contains(string(body.Expression), "Image.clipToBoundsAndScale") {
			t.Errorf("expected clipToBoundsAndScale in expression")
		}

		json.NewEncoder(w).Encode(map[string]string{
			"name": "projects/test-project/thumbnails/abc123",
		})
	})

	region := Point(101.68, 3.14).Buffer(50000).Bounds()
	img := LoadCollection("MODIS/061/MOD11A1").Median().Select("LST_Day_1km")

	url, err := c.Thumbnail(context.Background(), img, region, 512, 512)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := srv.URL + "/projects/test-project/thumbnails/abc123:getPixels"
	if url != want {
		t.Fatalf("got url %q, want %q", url, want)
	}
}

func TestThumbnailMissingName(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	img := LoadCollection("MODIS/061/MOD11A1").Median()
	region := Point(0, 0).Buffer(1000).Bounds()
	if _, err := c.Thumbnail(context.Background(), img, region, 512, 512); err == nil {
		t.Fatal("expected error when thumbnail name is missing")
	}
}
