package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SscSPs/sacco_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/sacco_ledger/internal/core/ports/services"
	"github.com/SscSPs/sacco_ledger/internal/dto"
	"github.com/SscSPs/sacco_ledger/internal/middleware"
)

// groupHandler handles HTTP requests related to groups and their members.
type groupHandler struct {
	groupService   portssvc.GroupSvcFacade
	accountService portssvc.ChartOfAccountsSvcFacade
	balanceService portssvc.BalanceSvc
}

// RegisterGroupRoutes registers routes related to groups.
func RegisterGroupRoutes(rg *gin.RouterGroup, groupService portssvc.GroupSvcFacade, accountService portssvc.ChartOfAccountsSvcFacade, balanceService portssvc.BalanceSvc) {
	h := &groupHandler{groupService: groupService, accountService: accountService, balanceService: balanceService}

	groups := rg.Group("/groups")
	{
		groups.POST("", h.createGroup)
		groups.GET("", h.listGroups)
		groups.GET("/:groupID", h.getGroup)
		groups.GET("/:groupID/accounts", h.listGroupAccounts)
		groups.GET("/:groupID/summary", h.getFinancialSummary)
		groups.POST("/:groupID/members", h.createMember)
		groups.GET("/:groupID/members", h.listMembers)
	}
}

// createGroup godoc
// @Summary Create a group
// @Description Creates a savings group and provisions its standard chart of accounts
// @Tags groups
// @Accept  json
// @Produce  json
// @Param   group body dto.CreateGroupRequest true "Group details"
// @Success 201 {object} dto.GroupResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to create group"
// @Security BearerAuth
// @Router /groups [post]
func (h *groupHandler) createGroup(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateGroup", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	group, err := h.groupService.CreateGroup(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to create group")
		return
	}

	logger.Info("Group created", slog.String("group_id", group.GroupID))
	c.JSON(http.StatusCreated, dto.ToGroupResponse(group))
}

// listGroups godoc
// @Summary List groups
// @Tags groups
// @Produce  json
// @Param   limit query int false "Limit number of results" default(20)
// @Param   offset query int false "Offset for pagination" default(0)
// @Success 200 {array} dto.GroupResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list groups"
// @Security BearerAuth
// @Router /groups [get]
func (h *groupHandler) listGroups(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListGroupsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for ListGroups", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	groups, err := h.groupService.ListGroups(c.Request.Context(), params.Limit, params.Offset)
	if err != nil {
		respondError(c, logger, err, "Failed to list groups")
		return
	}
	c.JSON(http.StatusOK, dto.ToGroupResponses(groups))
}

// getGroup godoc
// @Summary Get a group
// @Tags groups
// @Produce  json
// @Param   groupID path string true "Group ID"
// @Success 200 {object} dto.GroupResponse
// @Failure 404 {object} map[string]string "Group not found"
// @Security BearerAuth
// @Router /groups/{groupID} [get]
func (h *groupHandler) getGroup(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("group_id", c.Param("groupID")))

	group, err := h.groupService.GetGroupByID(c.Request.Context(), c.Param("groupID"))
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve group")
		return
	}
	c.JSON(http.StatusOK, dto.ToGroupResponse(group))
}

// listGroupAccounts godoc
// @Summary List the chart of accounts of a group
// @Tags groups
// @Produce  json
// @Param   groupID path string true "Group ID"
// @Success 200 {array} dto.AccountResponse
// @Security BearerAuth
// @Router /groups/{groupID}/accounts [get]
func (h *groupHandler) listGroupAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("group_id", c.Param("groupID")))

	accounts, err := h.accountService.ListAccountsByScope(c.Request.Context(), domain.GroupScope(c.Param("groupID")))
	if err != nil {
		respondError(c, logger, err, "Failed to list accounts")
		return
	}
	c.JSON(http.StatusOK, dto.ToListAccountResponse(accounts))
}

// getFinancialSummary godoc
// @Summary Group financial summary
// @Description Totals per account type derived from the ledger
// @Tags groups
// @Produce  json
// @Param   groupID path string true "Group ID"
// @Param   asOf query string false "As-of date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} dto.GroupFinancialSummaryResponse
// @Failure 400 {object} map[string]string "Invalid date"
// @Failure 404 {object} map[string]string "Group not found"
// @Security BearerAuth
// @Router /groups/{groupID}/summary [get]
func (h *groupHandler) getFinancialSummary(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("group_id", c.Param("groupID")))

	asOf, ok := parseAsOf(c, logger)
	if !ok {
		return
	}
	summary, err := h.balanceService.GroupFinancialSummary(c.Request.Context(), c.Param("groupID"), asOf)
	if err != nil {
		respondError(c, logger, err, "Failed to build financial summary")
		return
	}
	c.JSON(http.StatusOK, dto.ToGroupFinancialSummaryResponse(summary))
}

// createMember godoc
// @Summary Register a member
// @Tags groups
// @Accept  json
// @Produce  json
// @Param   groupID path string true "Group ID"
// @Param   member body dto.CreateMemberRequest true "Member details"
// @Success 201 {object} dto.MemberResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Group not found"
// @Failure 409 {object} map[string]string "Member number already used"
// @Security BearerAuth
// @Router /groups/{groupID}/members [post]
func (h *groupHandler) createMember(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("group_id", c.Param("groupID")))
	var req dto.CreateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateMember", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	member, err := h.groupService.CreateMember(c.Request.Context(), c.Param("groupID"), req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to create member")
		return
	}

	logger.Info("Member registered", slog.String("member_id", member.MemberID))
	c.JSON(http.StatusCreated, dto.ToMemberResponse(member))
}

// listMembers godoc
// @Summary List members of a group
// @Tags groups
// @Produce  json
// @Param   groupID path string true "Group ID"
// @Success 200 {array} dto.MemberResponse
// @Security BearerAuth
// @Router /groups/{groupID}/members [get]
func (h *groupHandler) listMembers(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("group_id", c.Param("groupID")))

	members, err := h.groupService.ListMembers(c.Request.Context(), c.Param("groupID"))
	if err != nil {
		respondError(c, logger, err, "Failed to list members")
		return
	}
	c.JSON(http.StatusOK, dto.ToMemberResponses(members))
}

// parseAsOf reads the optional asOf query parameter. A date covers the whole day.
func parseAsOf(c *gin.Context, logger *slog.Logger) (time.Time, bool) {
	raw := c.Query("asOf")
	if raw == "" {
		return time.Now().UTC(), true
	}
	day, err := time.Parse("2006-01-02", raw)
	if err != nil {
		logger.Warn("Invalid asOf date", slog.String("as_of", raw))
		c.JSON(http.StatusBadRequest, gin.H{"error": "asOf must be formatted as YYYY-MM-DD"})
		return time.Time{}, false
	}
	return day.Add(24*time.Hour - time.Nanosecond), true
}
