package api

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/phrazzld/taskboard-api/internal/api/shared"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/service"
)

// RuleHandler handles automation-rule HTTP requests.
type RuleHandler struct {
	ruleService service.RuleService
	validator   *validator.Validate
	logger      *slog.Logger
}

// NewRuleHandler creates a new RuleHandler.
func NewRuleHandler(ruleService service.RuleService, logger *slog.Logger) *RuleHandler {
	if ruleService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("ruleService cannot be nil for RuleHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for RuleHandler")
	}

	return &RuleHandler{
		ruleService: ruleService,
		validator:   validator.New(),
		logger:      logger.With(slog.String("component", "rule_handler")),
	}
}

// parseTrigger converts a wire trigger payload to a validated TriggerSpec.
func parseTrigger(payload TriggerPayload) (domain.TriggerSpec, error) {
	return domain.ParseTriggerSpec(domain.TriggerType(payload.Type), payload.Condition)
}

// parseAction converts a wire action payload to a validated ActionSpec.
func parseAction(payload ActionPayload) (domain.ActionSpec, error) {
	return domain.ParseActionSpec(domain.ActionType(payload.Type), payload.Data)
}

// respondWithServiceError maps a service-layer error to a sanitized HTTP
// error response.
func respondWithServiceError(w http.ResponseWriter, r *http.Request, err error) {
	shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
}

// Create handles POST /api/projects/{projectID}/automations requests.
func (h *RuleHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	projectID, ok := requirePathUUID(w, r, "projectID")
	if !ok {
		return
	}

	var req CreateRuleRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	trigger, err := parseTrigger(req.Trigger)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, GetSafeErrorMessage(err))
		return
	}
	action, err := parseAction(req.Action)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, GetSafeErrorMessage(err))
		return
	}

	rule, err := h.ruleService.CreateRule(r.Context(), userID, projectID, req.Name, trigger, action)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	log.Debug("automation rule created via API",
		slog.String("rule_id", rule.ID.String()),
		slog.String("project_id", projectID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, ruleToResponse(rule))
}

// List handles GET /api/projects/{projectID}/automations requests.
func (h *RuleHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	projectID, ok := requirePathUUID(w, r, "projectID")
	if !ok {
		return
	}

	rules, err := h.ruleService.ListRules(r.Context(), userID, projectID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	responses := make([]RuleResponse, 0, len(rules))
	for _, rule := range rules {
		responses = append(responses, ruleToResponse(rule))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// Get handles GET /api/automations/{id} requests.
func (h *RuleHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	ruleID, ok := requirePathUUID(w, r, "id")
	if !ok {
		return
	}

	rule, err := h.ruleService.GetRule(r.Context(), userID, ruleID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ruleToResponse(rule))
}

// Update handles PUT /api/automations/{id} requests.
func (h *RuleHandler) Update(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	ruleID, ok := requirePathUUID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateRuleRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	update := domain.RuleUpdate{Name: req.Name, IsActive: req.IsActive}
	if req.Trigger != nil {
		trigger, err := parseTrigger(*req.Trigger)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, GetSafeErrorMessage(err))
			return
		}
		update.Trigger = &trigger
	}
	if req.Action != nil {
		action, err := parseAction(*req.Action)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, GetSafeErrorMessage(err))
			return
		}
		update.Action = &action
	}

	rule, err := h.ruleService.UpdateRule(r.Context(), userID, ruleID, update)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	log.Debug("automation rule updated via API", slog.String("rule_id", ruleID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, ruleToResponse(rule))
}

// Delete handles DELETE /api/automations/{id} requests.
func (h *RuleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	ruleID, ok := requirePathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.ruleService.DeleteRule(r.Context(), userID, ruleID); err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	log.Debug("automation rule deleted via API", slog.String("rule_id", ruleID.String()))
	w.WriteHeader(http.StatusNoContent)
}
