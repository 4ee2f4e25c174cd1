package api

import (
	"math/big"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gorilla/mux"

	"github.com/cask-indexer/internal/models"
)

// normalizeAddress validates and lowercases a path address the way entity
// keys are written by the projection.
func normalizeAddress(raw string) (string, bool) {
	if !common.IsHexAddress(raw) {
		return "", false
	}
	return strings.ToLower(common.HexToAddress(raw).Hex()), true
}

// normalizeHashID validates a 32-byte hex id (DCA, P2P and top-up keys).
func normalizeHashID(raw string) (string, bool) {
	b, err := hexutil.Decode(raw)
	if err != nil || len(b) != common.HashLength {
		return "", false
	}
	return common.BytesToHash(b).Hex(), true
}

// respondEntity writes the standard lookup responses: 400 handled by callers,
// 404 for missing entities, 500 for store failures.
func (s *Server) respondEntity(w http.ResponseWriter, r *http.Request, entity interface{}, err error) {
	if err != nil {
		s.log.WithError(err).WithField("path", r.URL.Path).Error("entity lookup failed")
		respondError(w, http.StatusInternalServerError, ErrCodeInternalError, "An internal error occurred")
		return
	}
	respondJSON(w, http.StatusOK, entity)
}

func (s *Server) handleGetProtocol(w http.ResponseWriter, r *http.Request) {
	cask, err := s.store.GetCask(r.Context())
	if err == nil && cask == nil {
		cask = models.NewCask()
	}
	s.respondEntity(w, r, cask, err)
}

func (s *Server) handleGetMetric(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	timestamp := time.Now().Unix()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "date must be a unix timestamp")
			return
		}
		timestamp = parsed
	}

	metric, err := s.store.GetMetric(r.Context(), models.MetricKey(name, timestamp))
	if err == nil && metric == nil {
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "metric not found")
		return
	}
	s.respondEntity(w, r, metric, err)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := normalizeAddress(mux.Vars(r)["address"])
	if !ok {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "invalid address")
		return
	}
	user, err := s.store.GetUser(r.Context(), id)
	if err == nil && user == nil {
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "user not found")
		return
	}
	s.respondEntity(w, r, user, err)
}

func (s *Server) handleGetConsumer(w http.ResponseWriter, r *http.Request) {
	id, ok := normalizeAddress(mux.Vars(r)["address"])
	if !ok {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "invalid address")
		return
	}
	consumer, err := s.store.GetConsumer(r.Context(), id)
	if err == nil && consumer == nil {
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "consumer not found")
		return
	}
	s.respondEntity(w, r, consumer, err)
}

func (s *Server) handleGetProvider(w http.ResponseWriter, r *http.Request) {
	id, ok := normalizeAddress(mux.Vars(r)["address"])
	if !ok {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "invalid address")
		return
	}
	provider, err := s.store.GetProvider(r.Context(), id)
	if err == nil && provider == nil {
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "provider not found")
		return
	}
	s.respondEntity(w, r, provider, err)
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	provider, ok := normalizeAddress(vars["address"])
	if !ok {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "invalid address")
		return
	}
	planID, err := strconv.ParseUint(vars["planId"], 10, 32)
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "invalid plan id")
		return
	}

	plan, err := s.store.GetPlan(r.Context(), models.PlanKey(provider, uint32(planID)))
	if err == nil && plan == nil {
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "plan not found")
		return
	}
	s.respondEntity(w, r, plan, err)
}

func (s *Server) handleGetDiscount(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	provider, ok := normalizeAddress(vars["address"])
	if !ok {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "invalid address")
		return
	}
	discountID, ok := normalizeHashID(vars["discountId"])
	if !ok {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "invalid discount id")
		return
	}

	discount, err := s.store.GetDiscount(r.Context(), models.DiscountKey(provider, discountID))
	if err == nil && discount == nil {
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "discount not found")
		return
	}
	s.respondEntity(w, r, discount, err)
}

func (s *Server) handleGetSubscription(w http.ResponseWriter, r *http.Request) {
	// Token ids are accepted in decimal or 0x-hex form; the entity key is
	// the hex encoding.
	raw := mux.Vars(r)["id"]
	tokenID, ok := new(big.Int).SetString(raw, 0)
	if !ok || tokenID.Sign() < 0 {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "invalid subscription id")
		return
	}

	sub, err := s.store.GetSubscription(r.Context(), hexutil.EncodeBig(tokenID))
	if err == nil && sub == nil {
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "subscription not found")
		return
	}
	s.respondEntity(w, r, sub, err)
}

func (s *Server) handleGetDCA(w http.ResponseWriter, r *http.Request) {
	id, ok := normalizeHashID(mux.Vars(r)["id"])
	if !ok {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "invalid dca id")
		return
	}
	dca, err := s.store.GetDCA(r.Context(), id)
	if err == nil && dca == nil {
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "dca not found")
		return
	}
	s.respondEntity(w, r, dca, err)
}

func (s *Server) handleGetP2P(w http.ResponseWriter, r *http.Request) {
	id, ok := normalizeHashID(mux.Vars(r)["id"])
	if !ok {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "invalid p2p id")
		return
	}
	p2p, err := s.store.GetP2P(r.Context(), id)
	if err == nil && p2p == nil {
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "p2p not found")
		return
	}
	s.respondEntity(w, r, p2p, err)
}

func (s *Server) handleGetChainlinkTopup(w http.ResponseWriter, r *http.Request) {
	id, ok := normalizeHashID(mux.Vars(r)["id"])
	if !ok {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "invalid chainlink topup id")
		return
	}
	topup, err := s.store.GetChainlinkTopup(r.Context(), id)
	if err == nil && topup == nil {
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "chainlink topup not found")
		return
	}
	s.respondEntity(w, r, topup, err)
}
