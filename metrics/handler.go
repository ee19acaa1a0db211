package metrics

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	confirm "github.com/fardream/confirm-solana-transaction"
	"github.com/fardream/confirm-solana-transaction/types"
)

// statusResponse is the JSON body of a signature lookup.
type statusResponse struct {
	Signature          types.Signature `json:"signature"`
	Found              bool            `json:"found"`
	Slot               uint64          `json:"slot,omitempty"`
	Confirmations      *uint64         `json:"confirmations,omitempty"`
	ConfirmationStatus string          `json:"confirmationStatus,omitempty"`
	Err                string          `json:"err,omitempty"`
}

// NewHandler routes:
//
//	GET /metrics                   Prometheus exposition for gatherer
//	GET /healthz                   liveness
//	GET /v1/signatures/{signature} current status of a signature, if q is set
func NewHandler(gatherer prometheus.Gatherer, q confirm.StatusQuerier, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	}).Methods(http.MethodGet)
	if q != nil {
		r.HandleFunc("/v1/signatures/{signature}", statusHandler(q, log)).Methods(http.MethodGet)
	}
	return r
}

func statusHandler(q confirm.StatusQuerier, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		sig := types.Signature(mux.Vars(req)["signature"])
		status, err := q.GetSignatureStatus(req.Context(), sig)
		if err != nil {
			log.Warn("signature lookup failed", zap.String("signature", string(sig)), zap.Error(err))
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		resp := statusResponse{Signature: sig, Found: status != nil}
		if status != nil {
			resp.Slot = status.Slot
			resp.Confirmations = status.Confirmations
			resp.ConfirmationStatus = status.ConfirmationStatus.String()
			resp.Err = status.Err
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			log.Debug("write response", zap.Error(err))
		}
	}
}
