package esplora

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tokenized/liquid/assets"
	"github.com/tokenized/liquid/liquid"

	"github.com/pkg/errors"
)

const (
	usdtID = "ce091c998b83c78bb71a632313ba3760f1763d9cfcffae02258ffa9865a37bd2"

	usdtJSON = `{"asset_id":"ce091c998b83c78bb71a632313ba3760f1763d9cfcffae02258ffa9865a37bd2",` +
		`"status":{"confirmed":true,"block_height":1001},` +
		`"chain_stats":{"tx_count":37,"issuance_count":22,"issued_amount":120000000000000,` +
		`"has_blinded_issuances":false},` +
		`"mempool_stats":{"tx_count":0},` +
		`"entity":{"domain":"tether.to"},"precision":8,"name":"Tether USD","ticker":"USDt"}`
)

func newTestServer(t *testing.T) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/asset/"+usdtID:
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, usdtJSON)

		case strings.HasPrefix(r.URL.Path, "/asset/00"):
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, "Asset not found")

		case strings.HasPrefix(r.URL.Path, "/asset/11"):
			// wrong asset returned
			fmt.Fprint(w, usdtJSON)

		case strings.HasPrefix(r.URL.Path, "/asset/22"):
			time.Sleep(500 * time.Millisecond)
			fmt.Fprint(w, usdtJSON)

		default:
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, "database unavailable\n")
		}
	}))
}

func mustAssetID(t *testing.T, s string) assets.AssetID {
	id, err := assets.NewAssetIDFromStr(s)
	if err != nil {
		t.Fatalf("Failed to parse asset id : %s", err)
	}
	return id
}

func TestGetAsset(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	service, err := NewService(server.URL+"/", liquid.MainNet, 0)
	if err != nil {
		t.Fatalf("Failed to create service : %s", err)
	}

	if service.URL() != server.URL {
		t.Errorf("Wrong url : got %s, want %s", service.URL(), server.URL)
	}

	asset, err := service.GetAsset(context.Background(), mustAssetID(t, usdtID))
	if err != nil {
		t.Fatalf("Failed to get asset : %s", err)
	}

	if asset.Name != "Tether USD" {
		t.Errorf("Wrong name : got %s, want %s", asset.Name, "Tether USD")
	}

	if asset.Issuer() != "tether.to" {
		t.Errorf("Wrong issuer : got %s, want %s", asset.Issuer(), "tether.to")
	}

	if asset.GetPrecision() != 8 {
		t.Errorf("Wrong precision : got %d, want %d", asset.GetPrecision(), 8)
	}
}

func TestGetAssetErrors(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	service, err := NewService(server.URL, liquid.TestNet, 0)
	if err != nil {
		t.Fatalf("Failed to create service : %s", err)
	}

	ctx := context.Background()

	if _, err := service.GetAsset(ctx, mustAssetID(t, strings.Repeat("00", 32))); errors.Cause(err) != assets.ErrAssetNotFound {
		t.Errorf("Wrong not found error : got %v, want %s", err, assets.ErrAssetNotFound)
	}

	_, err = service.GetAsset(ctx, mustAssetID(t, strings.Repeat("33", 32)))
	httpErr, ok := errors.Cause(err).(HTTPError)
	if !ok {
		t.Fatalf("Wrong error type : %v", err)
	}

	if httpErr.Status != http.StatusInternalServerError {
		t.Errorf("Wrong status : got %d, want %d", httpErr.Status, http.StatusInternalServerError)
	}

	if httpErr.Message != "database unavailable" {
		t.Errorf("Wrong message : got %q, want %q", httpErr.Message, "database unavailable")
	}

	if _, err := service.GetAsset(ctx, mustAssetID(t, strings.Repeat("11", 32))); err == nil {
		t.Errorf("No error for wrong asset returned")
	}
}

func TestGetAssetTimeout(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	service, err := NewService(server.URL, liquid.MainNet, 100*time.Millisecond)
	if err != nil {
		t.Fatalf("Failed to create service : %s", err)
	}

	_, err = service.GetAsset(context.Background(), mustAssetID(t, strings.Repeat("22", 32)))
	if errors.Cause(err) != ErrTimeout {
		t.Errorf("Wrong error : got %v, want %s", err, ErrTimeout)
	}

	// Context deadline
	service, err = NewService(server.URL, liquid.MainNet, 0)
	if err != nil {
		t.Fatalf("Failed to create service : %s", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err = service.GetAsset(ctx, mustAssetID(t, strings.Repeat("22", 32)))
	if errors.Cause(err) != ErrTimeout {
		t.Errorf("Wrong context error : got %v, want %s", err, ErrTimeout)
	}
}

func TestNewService(t *testing.T) {
	tests := []struct {
		net liquid.Network
		url string
		err error
	}{
		{liquid.MainNet, URLMainNet, nil},
		{liquid.TestNet, URLTestNet, nil},
		{liquid.RegTest, "", ErrNoDefaultURL},
		{liquid.InvalidNet, "", liquid.ErrUnsupportedNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.net.String(), func(t *testing.T) {
			service, err := NewService("", tt.net, 0)
			if errors.Cause(err) != tt.err {
				t.Fatalf("Wrong error : got %v, want %v", err, tt.err)
			}

			if err != nil {
				return
			}

			if service.URL() != tt.url {
				t.Errorf("Wrong url : got %s, want %s", service.URL(), tt.url)
			}

			if service.Network() != tt.net {
				t.Errorf("Wrong network : got %s, want %s", service.Network(), tt.net)
			}
		})
	}

	// Regtest needs a local server.
	service, err := NewService("http://localhost:3002", liquid.RegTest, 0)
	if err != nil {
		t.Fatalf("Failed to create regtest service : %s", err)
	}

	if service.URL() != "http://localhost:3002" {
		t.Errorf("Wrong url : got %s", service.URL())
	}
}
