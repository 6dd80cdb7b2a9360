package handlers

import (
	"errors"
	"net/http"

	"consultly/models"
	"consultly/services/wizard"

	"github.com/gin-gonic/gin"
)

// WizardService is injected from main during startup.
var WizardService wizard.Service

// sessionView shapes a session for the client. The client key never leaves
// the server in a response body.
func sessionView(sess *wizard.Session) gin.H {
	view := gin.H{
		"sessionID":     sess.SessionID,
		"step":          sess.Step,
		"stepIndex":     sess.Step.Index(),
		"stepCount":     wizard.StepCount(),
		"draft":         sess.Draft,
		"exitState":     sess.ExitState,
		"billingSynced": sess.BillingSynced,
	}
	if sess.Resumed {
		view["resumed"] = true
	}
	if conf := sess.Confirmation(); conf != nil {
		view["confirmation"] = conf
	}
	return view
}

// respondWizardError maps service errors onto the HTTP surface. Validation
// problems are 422 with per-field messages; collaborator outages are 502 so
// the client can offer a retry.
func respondWizardError(c *gin.Context, err error) {
	var verr *wizard.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  "validation_failed",
			"fields": verr.Fields,
		})
		return
	}

	var ferr *wizard.FetchError
	if errors.As(err, &ferr) {
		c.JSON(http.StatusBadGateway, gin.H{
			"error":  "fetch_failed",
			"source": ferr.Source,
		})
		return
	}

	var werr *wizard.WizardError
	if errors.As(err, &werr) {
		status := http.StatusConflict
		if werr.Code == wizard.ErrSessionNotFound.Code {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": werr.Code, "message": werr.Message})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
}

// respondCallResult shapes an orchestrator outcome. Ordering violations and a
// taken slot are conflicts the client can resolve; an unreachable booking
// platform is a gateway failure naming the failing call.
func respondCallResult(c *gin.Context, sess *wizard.Session, res wizard.CallResult) {
	if res.Ok {
		c.JSON(http.StatusOK, gin.H{"session": sessionView(sess), "call": res})
		return
	}

	status := http.StatusBadGateway
	switch res.Code {
	case "slot_unavailable", "booking_missing", "billing_not_synced", "incomplete_draft", "invalid_method":
		status = http.StatusConflict
	}
	c.JSON(status, gin.H{"session": sessionView(sess), "call": res})
}

// StartWizardSession opens a session, resuming a saved draft when one exists.
func StartWizardSession(c *gin.Context) {
	clientKey := c.GetString("clientKey")

	sess, err := WizardService.Start(c.Request.Context(), clientKey)
	if err != nil {
		respondWizardError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sessionView(sess)})
}

// GetWizardSession returns the current session state.
func GetWizardSession(c *gin.Context) {
	sess, err := WizardService.Get(c.Request.Context(), c.Param("sessionID"))
	if err != nil {
		respondWizardError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sessionView(sess)})
}

// HasSavedDraft reports whether a saved draft exists for the caller.
func HasSavedDraft(c *gin.Context) {
	clientKey := c.GetString("clientKey")

	exists, err := WizardService.HasSavedDraft(c.Request.Context(), clientKey)
	if err != nil {
		respondWizardError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hasSavedDraft": exists})
}

// SelectConsultant applies the consultant selection step.
func SelectConsultant(c *gin.Context) {
	var input struct {
		ConsultantID string `json:"consultantId"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	sess, err := WizardService.SelectConsultant(c.Request.Context(), c.Param("sessionID"), input.ConsultantID)
	if err != nil {
		respondWizardError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sessionView(sess)})
}

// FetchAvailability loads the open slots for a date and snapshots them in the
// session.
func FetchAvailability(c *gin.Context) {
	date := c.Query("date")
	timezone := c.DefaultQuery("timezone", "UTC")

	slots, err := WizardService.FetchAvailability(c.Request.Context(), c.Param("sessionID"), date, timezone)
	if err != nil {
		respondWizardError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "slots": slots})
}

// SelectSchedule applies the time-slot step.
func SelectSchedule(c *gin.Context) {
	var input struct {
		Date string `json:"date"`
		Slot string `json:"slot"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	sess, err := WizardService.SelectSchedule(c.Request.Context(), c.Param("sessionID"), input.Date, input.Slot)
	if err != nil {
		respondWizardError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sessionView(sess)})
}

// SubmitContact applies the contact step.
func SubmitContact(c *gin.Context) {
	var input struct {
		Contact       models.ContactInfo `json:"contact"`
		TermsAccepted bool               `json:"termsAccepted"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	sess, err := WizardService.SubmitContact(c.Request.Context(), c.Param("sessionID"), input.Contact, input.TermsAccepted)
	if err != nil {
		respondWizardError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sessionView(sess)})
}

// SubmitBilling applies the billing step.
func SubmitBilling(c *gin.Context) {
	var input struct {
		Billing models.BillingInfo `json:"billing"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	sess, err := WizardService.SubmitBilling(c.Request.Context(), c.Param("sessionID"), input.Billing)
	if err != nil {
		respondWizardError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sessionView(sess)})
}

// StepBack regresses the wizard one step without validation.
func StepBack(c *gin.Context) {
	sess, err := WizardService.Back(c.Request.Context(), c.Param("sessionID"))
	if err != nil {
		respondWizardError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sessionView(sess)})
}

// CreateBooking issues the first booking platform call.
func CreateBooking(c *gin.Context) {
	sess, res, err := WizardService.CreateBooking(c.Request.Context(), c.Param("sessionID"))
	if err != nil {
		respondWizardError(c, err)
		return
	}
	respondCallResult(c, sess, res)
}

// SyncBilling issues the billing update call.
func SyncBilling(c *gin.Context) {
	sess, res, err := WizardService.UpdateBilling(c.Request.Context(), c.Param("sessionID"))
	if err != nil {
		respondWizardError(c, err)
		return
	}
	respondCallResult(c, sess, res)
}

// SubmitPayment issues the payment call and completes the wizard.
func SubmitPayment(c *gin.Context) {
	var input struct {
		Method string `json:"method"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	sess, res, err := WizardService.SubmitPayment(c.Request.Context(), c.Param("sessionID"), input.Method)
	if err != nil {
		respondWizardError(c, err)
		return
	}
	respondCallResult(c, sess, res)
}

// RequestExit handles a mid-flow exit attempt.
func RequestExit(c *gin.Context) {
	sess, outcome, err := WizardService.RequestExit(c.Request.Context(), c.Param("sessionID"))
	if err != nil {
		respondWizardError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sessionView(sess), "exit": outcome})
}

// ResolveExit applies the user's decision to a pending exit confirmation.
func ResolveExit(c *gin.Context) {
	var input struct {
		Decision string `json:"decision"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	sess, outcome, err := WizardService.ResolveExit(c.Request.Context(), c.Param("sessionID"), wizard.ExitDecision(input.Decision))
	if err != nil {
		respondWizardError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sessionView(sess), "exit": outcome})
}
