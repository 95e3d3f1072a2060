package esplora

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/tokenized/liquid/assets"
	"github.com/tokenized/liquid/liquid"

	"github.com/pkg/errors"
)

const (
	URLMainNet = "https://blockstream.info/liquid/api"
	URLTestNet = "https://blockstream.info/liquidtestnet/api"

	// URLGetAsset is appended to the base url.
	URLGetAsset = "%s/asset/%s"

	DefaultTimeout = 10 * time.Second
)

var (
	ErrTimeout = errors.New("Timed Out")

	// ErrNoDefaultURL is returned when a url isn't specified for a network without a public
	// Esplora server.
	ErrNoDefaultURL = errors.New("No default url for network")
)

type Service struct {
	baseURL string
	network liquid.Network
	client  *http.Client
}

type HTTPError struct {
	Status  int
	Message string
}

func (err HTTPError) Error() string {
	if len(err.Message) > 0 {
		return fmt.Sprintf("HTTP Status %d : %s", err.Status, err.Message)
	}

	return fmt.Sprintf("HTTP Status %d", err.Status)
}

// DefaultURL returns the public Blockstream Esplora server for the network.
func DefaultURL(network liquid.Network) (string, error) {
	switch network {
	case liquid.MainNet:
		return URLMainNet, nil
	case liquid.TestNet:
		return URLTestNet, nil
	}

	return "", errors.Wrap(ErrNoDefaultURL, network.String())
}

// NewService returns an Esplora client. An empty base url uses the network's default and a zero
// timeout uses DefaultTimeout.
func NewService(baseURL string, network liquid.Network,
	timeout time.Duration) (*Service, error) {

	if !network.IsValid() {
		return nil, errors.Wrapf(liquid.ErrUnsupportedNetwork, "network 0x%08x", uint32(network))
	}

	if len(baseURL) == 0 {
		url, err := DefaultURL(network)
		if err != nil {
			return nil, err
		}
		baseURL = url
	}

	if timeout == 0 {
		timeout = DefaultTimeout
	}

	var transport = &http.Transport{
		Dial: (&net.Dialer{
			Timeout: 5 * time.Second,
		}).Dial,
		TLSHandshakeTimeout: 5 * time.Second,
	}

	return &Service{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		network: network,
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}, nil
}

func (s *Service) Network() liquid.Network {
	return s.network
}

func (s *Service) URL() string {
	return s.baseURL
}

// GetAsset returns the metadata of an asset. assets.ErrAssetNotFound is returned when the server
// doesn't know the asset.
func (s *Service) GetAsset(ctx context.Context, id assets.AssetID) (*assets.Asset, error) {
	url := fmt.Sprintf(URLGetAsset, s.baseURL, id)

	response := &assets.Asset{}
	if err := s.get(ctx, url, response); err != nil {
		if httpErr, ok := errors.Cause(err).(HTTPError); ok &&
			httpErr.Status == http.StatusNotFound {
			return nil, errors.Wrap(assets.ErrAssetNotFound, id.String())
		}
		return nil, errors.Wrap(err, "get")
	}

	if response.AssetID != id {
		return nil, fmt.Errorf("Wrong asset id : got %s, want %s", response.AssetID, id)
	}

	return response, nil
}

// get sends a request to the HTTP server using the GET method and decodes the json response.
func (s *Service) get(ctx context.Context, url string, response interface{}) error {
	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrap(err, "create request")
	}

	httpRequest.Header.Add("Accept", "application/json")

	httpResponse, err := s.client.Do(httpRequest)
	if err != nil {
		if isTimeout(err) {
			return errors.Wrap(ErrTimeout, errors.Wrap(err, "http get").Error())
		}

		return errors.Wrap(err, "http get")
	}
	defer httpResponse.Body.Close()

	if httpResponse.StatusCode < 200 || httpResponse.StatusCode > 299 {
		b, rerr := io.ReadAll(io.LimitReader(httpResponse.Body, 1024))
		if rerr == nil {
			return HTTPError{
				Status:  httpResponse.StatusCode,
				Message: strings.TrimSpace(string(b)),
			}
		}

		return HTTPError{Status: httpResponse.StatusCode}
	}

	if response != nil {
		if err := json.NewDecoder(httpResponse.Body).Decode(response); err != nil {
			return errors.Wrap(err, "decode response")
		}
	}

	return nil
}

func isTimeout(err error) bool {
	if errors.Cause(err) == context.DeadlineExceeded {
		return true
	}

	if netErr, ok := errors.Cause(err).(net.Error); ok && netErr.Timeout() {
		return true
	}

	return false
}
