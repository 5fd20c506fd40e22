package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "IS/IT Game API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Backend API for the IS/IT binary classification game.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of backend dependencies.")
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// POST /api/login
	postLogin, _ := r.NewOperationContext(http.MethodPost, "/api/login")
	postLogin.SetSummary("Sign in")
	postLogin.SetDescription("Exchanges email and password for a session token.")
	postLogin.AddReqStructure(LoginRequest{})
	postLogin.AddRespStructure(LoginResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postLogin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postLogin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(postLogin)

	// POST /api/logout
	postLogout, _ := r.NewOperationContext(http.MethodPost, "/api/logout")
	postLogout.SetSummary("Sign out")
	postLogout.SetDescription("Deletes the session named by the Bearer token.")
	postLogout.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusNoContent))
	_ = r.AddOperation(postLogout)

	// GET /api/me
	getMe, _ := r.NewOperationContext(http.MethodGet, "/api/me")
	getMe.SetSummary("Current user")
	getMe.SetDescription("Returns the signed-in user. Requires Bearer token.")
	getMe.AddRespStructure(MeResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getMe.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getMe)

	// GET /api/me/metrics
	getMetrics, _ := r.NewOperationContext(http.MethodGet, "/api/me/metrics")
	getMetrics.SetSummary("User metrics")
	getMetrics.SetDescription("Returns score, DQ, and AQ for the signed-in user. Requires Bearer token.")
	getMetrics.AddRespStructure(MetricsResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getMetrics.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getMetrics)

	// GET /api/next
	getNext, _ := r.NewOperationContext(http.MethodGet, "/api/next")
	getNext.SetSummary("Continue")
	getNext.SetDescription("Returns the next poll for the signed-in user, or returnToList when the ladder is exhausted. Requires Bearer token.")
	getNext.AddRespStructure(ProgressionInfo{}, openapi.WithHTTPStatus(http.StatusOK))
	getNext.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getNext)

	// GET /api/polls
	listPolls, _ := r.NewOperationContext(http.MethodGet, "/api/polls")
	listPolls.SetSummary("List polls")
	listPolls.SetDescription("Returns published polls in ladder order. With a Bearer token, each poll carries the caller's voted flag.")
	listPolls.AddRespStructure([]PollSummary{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(listPolls)

	// GET /api/polls/{pollID}
	getPoll, _ := r.NewOperationContext(http.MethodGet, "/api/polls/{pollID}")
	getPoll.SetSummary("Poll view")
	getPoll.SetDescription("Returns the two words and the presentation flips for one round. Flips are decided per view and held fixed.")
	getPoll.AddRespStructure(PollViewResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getPoll.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getPoll)

	// POST /api/polls/{pollID}/vote
	postVote, _ := r.NewOperationContext(http.MethodPost, "/api/polls/{pollID}/vote")
	postVote.SetSummary("Confirm a placement")
	postVote.SetDescription("Resolves the placement gesture into a full assignment, records the vote (one per user per poll, resubmission overwrites), and returns the progression result. Requires Bearer token.")
	postVote.AddReqStructure(VoteRequest{})
	postVote.AddRespStructure(VoteResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postVote.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postVote.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	postVote.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	postVote.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(postVote)

	// GET /api/polls/{pollID}/results
	getResults, _ := r.NewOperationContext(http.MethodGet, "/api/polls/{pollID}/results")
	getResults.SetSummary("Poll results")
	getResults.SetDescription("Returns per-option vote counts for a poll.")
	getResults.AddRespStructure(PollResultsResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getResults.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getResults)

	// GET /api/polls/{pollID}/events
	getEvents, _ := r.NewOperationContext(http.MethodGet, "/api/polls/{pollID}/events")
	getEvents.SetSummary("SSE event stream")
	getEvents.SetDescription("Server-Sent Events stream of vote events for a poll. Pass token as query parameter.")
	getEvents.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	getEvents.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getEvents)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
