package framework

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
)

const (
	statusOK = "1"

	verifyPending      = "Pending in queue"
	verifyPassed       = "Pass - Verified"
	verifyAlready      = "Already Verified"
	alreadyVerifiedMsg = "already verified"
)

var (
	ErrAlreadyVerified    = errors.New("contract source code already verified")
	ErrVerificationFailed = errors.New("explorer rejected verification")
	ErrExplorerResponse   = errors.New("unexpected explorer response")
)

// Explorer talks to an Etherscan-compatible contract verification API.
type Explorer struct {
	apiURL     string
	browserURL string
	apiKey     string
	client     *http.Client
	log        *logrus.Entry

	PollInterval time.Duration
}

func NewExplorer(log *logrus.Entry, network Network, apiKey string) *Explorer {
	return &Explorer{
		apiURL:       network.APIURL,
		browserURL:   network.BrowserURL,
		apiKey:       apiKey,
		client:       &http.Client{Timeout: 30 * time.Second},
		log:          log.WithField("explorer", network.APIURL),
		PollInterval: 5 * time.Second,
	}
}

type explorerResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// resultString returns the result when the explorer sent a plain string.
func (r *explorerResponse) resultString() string {
	var s string
	if err := json.Unmarshal(r.Result, &s); err != nil {
		return string(r.Result)
	}
	return s
}

type VerificationRequest struct {
	Address common.Address
	// ContractName is fully qualified, "contracts/X.sol:X".
	ContractName string
	// SourceCode is the solc standard JSON input.
	SourceCode string
	// CompilerVersion in explorer form, "v0.8.27+commit.40a35a09".
	CompilerVersion string
	// ConstructorArgs is the ABI-encoded constructor input, hex without 0x.
	ConstructorArgs string
}

// IsVerified reports whether the explorer already has source for addr.
func (e *Explorer) IsVerified(ctx context.Context, addr common.Address) (bool, error) {
	params := url.Values{
		"module":  {"contract"},
		"action":  {"getsourcecode"},
		"address": {addr.Hex()},
	}
	resp, err := e.do(ctx, http.MethodGet, params)
	if err != nil {
		return false, err
	}
	if resp.Status != statusOK {
		return false, fmt.Errorf("%w: getsourcecode: %s", ErrExplorerResponse, resp.resultString())
	}

	var sources []struct {
		SourceCode string `json:"SourceCode"`
	}
	if err := json.Unmarshal(resp.Result, &sources); err != nil {
		return false, fmt.Errorf("%w: decode getsourcecode result: %v", ErrExplorerResponse, err)
	}
	return len(sources) > 0 && sources[0].SourceCode != "", nil
}

// Submit sends source for verification and returns the explorer's job guid.
func (e *Explorer) Submit(ctx context.Context, req VerificationRequest) (string, error) {
	// the api spells constructorArguements this way
	form := url.Values{
		"module":                {"contract"},
		"action":                {"verifysourcecode"},
		"codeformat":            {"solidity-standard-json-input"},
		"contractaddress":       {req.Address.Hex()},
		"contractname":          {req.ContractName},
		"sourceCode":            {req.SourceCode},
		"compilerversion":       {req.CompilerVersion},
		"constructorArguements": {req.ConstructorArgs},
	}
	resp, err := e.do(ctx, http.MethodPost, form)
	if err != nil {
		return "", err
	}

	result := resp.resultString()
	if resp.Status != statusOK {
		if strings.Contains(strings.ToLower(result), alreadyVerifiedMsg) {
			return "", ErrAlreadyVerified
		}
		return "", fmt.Errorf("%w: %s", ErrVerificationFailed, result)
	}
	return result, nil
}

// CheckStatus polls a verification job once. done is false while the job is queued.
func (e *Explorer) CheckStatus(ctx context.Context, guid string) (done bool, err error) {
	params := url.Values{
		"module": {"contract"},
		"action": {"checkverifystatus"},
		"guid":   {guid},
	}
	resp, err := e.do(ctx, http.MethodGet, params)
	if err != nil {
		return false, err
	}

	result := resp.resultString()
	switch {
	case result == verifyPending:
		return false, nil
	case result == verifyPassed, result == verifyAlready:
		return true, nil
	case resp.Status == statusOK:
		return true, nil
	default:
		return false, fmt.Errorf("%w: %s", ErrVerificationFailed, result)
	}
}

// WaitVerified blocks until the job guid leaves the queue.
func (e *Explorer) WaitVerified(ctx context.Context, guid string) error {
	ticker := time.NewTicker(e.PollInterval)
	defer ticker.Stop()

	for {
		done, err := e.CheckStatus(ctx, guid)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		e.log.WithField("guid", guid).Debug("Verification pending")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// AddressURL links to addr on the explorer website.
func (e *Explorer) AddressURL(addr common.Address) string {
	return Network{BrowserURL: e.browserURL}.AddressURL(addr.Hex()) + "#code"
}

func (e *Explorer) do(ctx context.Context, method string, params url.Values) (*explorerResponse, error) {
	params.Set("apikey", e.apiKey)

	var (
		req *http.Request
		err error
	)
	if method == http.MethodPost {
		req, err = http.NewRequestWithContext(ctx, method, e.apiURL, strings.NewReader(params.Encode()))
		if err == nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	} else {
		req, err = http.NewRequestWithContext(ctx, method, e.apiURL+"?"+params.Encode(), nil)
	}
	if err != nil {
		return nil, fmt.Errorf("build explorer request: %w", err)
	}

	res, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("explorer %s: %w", params.Get("action"), err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read explorer response: %w", err)
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned HTTP %d", ErrExplorerResponse, params.Get("action"), res.StatusCode)
	}

	var resp explorerResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExplorerResponse, err)
	}
	return &resp, nil
}
