package jsonrpc

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/handler"
	"github.com/creachadair/jrpc2/jhttp"
	"github.com/holiman/uint256"

	"ftn/errors"
	"ftn/interfaces"
	"ftn/logx"
	"ftn/token"
	"ftn/types"
	"ftn/utils"
)

// --- Error mapping ---

var rpcCodeByLedgerCode = map[errors.LedgerErrorCode]int{
	errors.ErrCodeInternal:                   rpcCodeInternal,
	errors.ErrCodeNotAuthorized:              rpcCodeNotAuthorized,
	errors.ErrCodeOverflow:                   rpcCodeOverflow,
	errors.ErrCodeUnderflow:                  rpcCodeUnderflow,
	errors.ErrCodeInsufficientBalance:        rpcCodeInsufficientBalance,
	errors.ErrCodeAccountNotRegistered:       rpcCodeAccountNotRegistered,
	errors.ErrCodeAccountNotEmpty:            rpcCodeAccountNotEmpty,
	errors.ErrCodeSelfTransfer:               rpcCodeSelfTransfer,
	errors.ErrCodeZeroAmount:                 rpcCodeZeroAmount,
	errors.ErrCodeStorageDepositInsufficient: rpcCodeStorageDepositInsufficient,
	errors.ErrCodeInvalidAttachedDeposit:     rpcCodeInvalidAttachedDeposit,
	errors.ErrCodeInvalidAddress:             rpcCodeInvalidAddress,
	errors.ErrCodeAlreadyInitialized:         rpcCodeAlreadyInitialized,
}

func toJRPC2Error(err error) error {
	if err == nil {
		return nil
	}
	if le, ok := err.(*errors.LedgerError); ok {
		code, known := rpcCodeByLedgerCode[le.Code]
		if !known {
			code = rpcCodeInternal
		}
		return jrpc2.Errorf(jrpc2.Code(code), "%s", le.Message).WithData(le)
	}
	return jrpc2.Errorf(jrpc2.Code(rpcCodeInternal), "%s", err.Error())
}

func invalidParams(format string, args ...interface{}) error {
	return jrpc2.Errorf(jrpc2.Code(rpcCodeInvalidParams), format, args...)
}

// --- Params/Results ---

// callParams is the common identity/payment envelope of submit methods. The
// hosting environment resolves and authenticates the caller before the
// request reaches this server; the resolved identity arrives here.
type callParams struct {
	Caller   string `json:"caller"`
	Attached string `json:"attached,omitempty"`
}

func (p callParams) context() (token.CallContext, error) {
	attached, err := utils.Uint256FromString(p.Attached)
	if err != nil {
		return token.CallContext{}, invalidParams("invalid attached amount: %v", err)
	}
	return token.NewCallContext(p.Caller, attached), nil
}

type balanceOfParams struct {
	Account string `json:"account"`
}

type balanceOfResponse struct {
	Account  string `json:"account"`
	Balance  string `json:"balance"`
	Decimals uint32 `json:"decimals"`
}

type totalSupplyResponse struct {
	TotalSupply string `json:"total_supply"`
	MaxSupply   string `json:"max_supply"`
}

type maxSupplyResponse struct {
	MaxSupply string `json:"max_supply"`
}

type ownerResponse struct {
	Owner string `json:"owner"`
}

type storageUsageResponse struct {
	UsedBytes uint64 `json:"used_bytes"`
}

type transferParams struct {
	callParams
	To     string `json:"to"`
	Amount string `json:"amount"`
}

type registerParams struct {
	callParams
	Account string `json:"account"`
}

type unregisterParams struct {
	callParams
}

type mintParams struct {
	callParams
	Account string `json:"account"`
	Amount  string `json:"amount"`
}

type burnParams struct {
	callParams
	Account string `json:"account"`
	Amount  string `json:"amount"`
}

type setOwnerParams struct {
	callParams
	NewOwner string `json:"new_owner"`
}

type setMaxSupplyParams struct {
	callParams
	NewCap string `json:"new_cap"`
}

type ackResponse struct {
	Ok bool `json:"ok"`
}

type mintResponse struct {
	Minted string `json:"minted"`
}

type setOwnerResponse struct {
	Owner string `json:"owner"`
}

type healthCheckResponse struct {
	Ok               bool   `json:"ok"`
	SupplyConsistent bool   `json:"supply_consistent"`
	Error            string `json:"error,omitempty"`
}

// --- Server ---

type Server struct {
	addr       string
	ledgerSvc  interfaces.TokenLedger
	corsConfig CORSConfig
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	MaxAge         int
}

func NewServer(addr string, ledgerSvc interfaces.TokenLedger) *Server {
	return &Server{
		addr:      addr,
		ledgerSvc: ledgerSvc,
	}
}

func (s *Server) Start() {
	methods := s.buildMethodMap()
	jh := jhttp.NewBridge(methods, &jhttp.BridgeOptions{Server: &jrpc2.ServerOptions{}})

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.setCORSHeaders(w, r)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		jh.ServeHTTP(w, r)
	})

	http.Handle("/", h)
	logx.Info("JSONRPC", "Serving JSON-RPC on ", s.addr)
	go http.ListenAndServe(s.addr, nil)
}

// SetCORSConfig allows configuring CORS settings
func (s *Server) SetCORSConfig(config CORSConfig) {
	s.corsConfig = config
}

// Build jrpc2 method map
func (s *Server) buildMethodMap() handler.Map {
	return handler.Map{
		MethodFtBalanceOf: handler.New(func(ctx context.Context, p balanceOfParams) (*balanceOfResponse, error) {
			return &balanceOfResponse{
				Account:  p.Account,
				Balance:  utils.Uint256ToString(s.ledgerSvc.BalanceOf(p.Account)),
				Decimals: s.ledgerSvc.Metadata().Decimals,
			}, nil
		}),
		MethodFtTotalSupply: handler.New(func(ctx context.Context) (*totalSupplyResponse, error) {
			return &totalSupplyResponse{
				TotalSupply: utils.Uint256ToString(s.ledgerSvc.TotalSupply()),
				MaxSupply:   utils.Uint256ToString(s.ledgerSvc.MaxSupply()),
			}, nil
		}),
		MethodFtMaxSupply: handler.New(func(ctx context.Context) (*maxSupplyResponse, error) {
			return &maxSupplyResponse{MaxSupply: utils.Uint256ToString(s.ledgerSvc.MaxSupply())}, nil
		}),
		MethodFtMetadata: handler.New(func(ctx context.Context) (*types.Metadata, error) {
			return s.ledgerSvc.Metadata(), nil
		}),
		MethodFtOwner: handler.New(func(ctx context.Context) (*ownerResponse, error) {
			owner, err := s.ledgerSvc.Owner()
			if err != nil {
				return nil, toJRPC2Error(err)
			}
			return &ownerResponse{Owner: owner}, nil
		}),
		MethodFtStorageUsage: handler.New(func(ctx context.Context) (*storageUsageResponse, error) {
			return &storageUsageResponse{UsedBytes: s.ledgerSvc.StorageUsage()}, nil
		}),
		MethodFtTransfer: handler.New(func(ctx context.Context, p transferParams) (*ackResponse, error) {
			call, amount, err := s.parseCall(p.callParams, p.Amount)
			if err != nil {
				return nil, err
			}
			if err := s.ledgerSvc.Transfer(call, p.To, amount); err != nil {
				return nil, toJRPC2Error(err)
			}
			return &ackResponse{Ok: true}, nil
		}),
		MethodFtRegister: handler.New(func(ctx context.Context, p registerParams) (*ackResponse, error) {
			call, err := p.context()
			if err != nil {
				return nil, err
			}
			if err := s.ledgerSvc.Register(call, p.Account); err != nil {
				return nil, toJRPC2Error(err)
			}
			return &ackResponse{Ok: true}, nil
		}),
		MethodFtUnregister: handler.New(func(ctx context.Context, p unregisterParams) (*ackResponse, error) {
			call, err := p.context()
			if err != nil {
				return nil, err
			}
			if err := s.ledgerSvc.Unregister(call); err != nil {
				return nil, toJRPC2Error(err)
			}
			return &ackResponse{Ok: true}, nil
		}),
		MethodFtMint: handler.New(func(ctx context.Context, p mintParams) (*mintResponse, error) {
			call, amount, err := s.parseCall(p.callParams, p.Amount)
			if err != nil {
				return nil, err
			}
			minted, err := s.ledgerSvc.Mint(call, p.Account, amount)
			if err != nil {
				return nil, toJRPC2Error(err)
			}
			return &mintResponse{Minted: utils.Uint256ToString(minted)}, nil
		}),
		MethodFtBurn: handler.New(func(ctx context.Context, p burnParams) (*ackResponse, error) {
			call, amount, err := s.parseCall(p.callParams, p.Amount)
			if err != nil {
				return nil, err
			}
			if err := s.ledgerSvc.Burn(call, p.Account, amount); err != nil {
				return nil, toJRPC2Error(err)
			}
			return &ackResponse{Ok: true}, nil
		}),
		MethodFtSetOwner: handler.New(func(ctx context.Context, p setOwnerParams) (*setOwnerResponse, error) {
			call, err := p.context()
			if err != nil {
				return nil, err
			}
			owner, err := s.ledgerSvc.SetOwner(call, p.NewOwner)
			if err != nil {
				return nil, toJRPC2Error(err)
			}
			return &setOwnerResponse{Owner: owner}, nil
		}),
		MethodFtSetMaxSupply: handler.New(func(ctx context.Context, p setMaxSupplyParams) (*ackResponse, error) {
			call, newCap, err := s.parseCall(p.callParams, p.NewCap)
			if err != nil {
				return nil, err
			}
			if err := s.ledgerSvc.SetMaxSupply(call, newCap); err != nil {
				return nil, toJRPC2Error(err)
			}
			return &ackResponse{Ok: true}, nil
		}),
		MethodHealthCheck: handler.New(func(ctx context.Context) (*healthCheckResponse, error) {
			if err := s.ledgerSvc.VerifySupply(); err != nil {
				return &healthCheckResponse{Ok: false, SupplyConsistent: false, Error: err.Error()}, nil
			}
			return &healthCheckResponse{Ok: true, SupplyConsistent: true}, nil
		}),
	}
}

func (s *Server) parseCall(p callParams, amountStr string) (token.CallContext, *uint256.Int, error) {
	call, err := p.context()
	if err != nil {
		return token.CallContext{}, nil, err
	}
	amount, err := utils.Uint256FromString(amountStr)
	if err != nil {
		return token.CallContext{}, nil, invalidParams("invalid amount: %v", err)
	}
	return call, amount, nil
}

// --- Helpers ---

func (s *Server) setCORSHeaders(w http.ResponseWriter, r *http.Request) {
	if len(s.corsConfig.AllowedOrigins) > 0 {
		if s.corsConfig.AllowedOrigins[0] == "*" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		} else {
			origin := r.Header.Get("Origin")
			for _, allowedOrigin := range s.corsConfig.AllowedOrigins {
				if origin == allowedOrigin {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					break
				}
			}
		}
	}

	if len(s.corsConfig.AllowedMethods) > 0 {
		w.Header().Set("Access-Control-Allow-Methods", strings.Join(s.corsConfig.AllowedMethods, ", "))
	}

	if len(s.corsConfig.AllowedHeaders) > 0 {
		w.Header().Set("Access-Control-Allow-Headers", strings.Join(s.corsConfig.AllowedHeaders, ", "))
	}

	if s.corsConfig.MaxAge > 0 {
		w.Header().Set("Access-Control-Max-Age", fmt.Sprintf("%d", s.corsConfig.MaxAge))
	}
}

// CORSFromEnv reads environment variables and constructs a CORSConfig.
// Returns (cfg, true) if any CORS-related env var is set; otherwise (zero, false).
//
// Env vars:
// - CORS_ALLOWED_ORIGINS: comma-separated list
// - CORS_ALLOWED_METHODS: comma-separated list
// - CORS_ALLOWED_HEADERS: comma-separated list
// - CORS_MAX_AGE: integer seconds
func CORSFromEnv() (CORSConfig, bool) {
	origins := os.Getenv("CORS_ALLOWED_ORIGINS")
	methods := os.Getenv("CORS_ALLOWED_METHODS")
	headers := os.Getenv("CORS_ALLOWED_HEADERS")
	maxAgeStr := os.Getenv("CORS_MAX_AGE")

	var maxAge int
	if maxAgeStr != "" {
		if v, err := strconv.Atoi(maxAgeStr); err == nil {
			maxAge = v
		}
	}

	var allowedOrigins, allowedMethods, allowedHeaders []string
	if origins != "" {
		allowedOrigins = splitAndTrim(origins)
	}
	if methods != "" {
		allowedMethods = splitAndTrim(methods)
	}
	if headers != "" {
		allowedHeaders = splitAndTrim(headers)
	}

	provided := len(allowedOrigins) > 0 || len(allowedMethods) > 0 || len(allowedHeaders) > 0 || maxAge > 0
	if !provided {
		return CORSConfig{}, false
	}

	return CORSConfig{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: allowedMethods,
		AllowedHeaders: allowedHeaders,
		MaxAge:         maxAge,
	}, true
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	var out []string
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
