package api

import (
	"errors"
	"net/http"

	"appraisal/internal/domain/appraisal"
	"appraisal/internal/domain/finalreview"
	"appraisal/internal/domain/selfappraisal"
	"appraisal/internal/domain/template"
)

type mapping struct {
	status int
	code   string
}

// errorTable maps domain sentinels to stable wire codes. Wrapped
// errors match through errors.Is, so detail added with fmt.Errorf
// still resolves to the sentinel's code.
var errorTable = []struct {
	err error
	mapping
}{
	{template.ErrConfigInvalid, mapping{http.StatusUnprocessableEntity, "template_config_invalid"}},
	{template.ErrTemplateNotFound, mapping{http.StatusNotFound, "template_not_found"}},
	{template.ErrUnknownCategory, mapping{http.StatusUnprocessableEntity, "unknown_category"}},

	{appraisal.ErrAppraisalNotFound, mapping{http.StatusNotFound, "appraisal_not_found"}},
	{appraisal.ErrEmployeeNotFound, mapping{http.StatusNotFound, "employee_not_found"}},
	{appraisal.ErrDuplicateAppraisal, mapping{http.StatusConflict, "appraisal_exists"}},
	{appraisal.ErrCycleNotActive, mapping{http.StatusUnprocessableEntity, "cycle_not_active"}},
	{appraisal.ErrDuplicateSignature, mapping{http.StatusConflict, "already_signed"}},
	{appraisal.ErrSignatureOutOfOrder, mapping{http.StatusConflict, "signature_out_of_order"}},
	{appraisal.ErrInvalidState, mapping{http.StatusConflict, "invalid_state"}},
	{appraisal.ErrTemplateConfigMissing, mapping{http.StatusUnprocessableEntity, "template_config_missing"}},
	{appraisal.ErrScoreOutOfRange, mapping{http.StatusUnprocessableEntity, "score_out_of_range"}},

	{finalreview.ErrReviewNotFound, mapping{http.StatusNotFound, "final_review_not_found"}},
	{finalreview.ErrRecordLocked, mapping{http.StatusConflict, "final_review_locked"}},
	{finalreview.ErrSlotAlreadySigned, mapping{http.StatusConflict, "slot_already_signed"}},
	{finalreview.ErrMissingSignatures, mapping{http.StatusUnprocessableEntity, "signatures_missing"}},
	{finalreview.ErrAccessDenied, mapping{http.StatusForbidden, "forbidden"}},
	{finalreview.ErrUnknownSlot, mapping{http.StatusBadRequest, "unknown_slot"}},

	{selfappraisal.ErrNotFound, mapping{http.StatusNotFound, "self_appraisal_not_found"}},
	{selfappraisal.ErrNotEditable, mapping{http.StatusConflict, "not_editable"}},
	{selfappraisal.ErrNotSubmitted, mapping{http.StatusConflict, "not_submitted"}},
	{selfappraisal.ErrLocked, mapping{http.StatusConflict, "self_appraisal_locked"}},
	{selfappraisal.ErrMissingAnswers, mapping{http.StatusUnprocessableEntity, "answers_missing"}},
	{selfappraisal.ErrReturnReasonRequired, mapping{http.StatusUnprocessableEntity, "return_reason_required"}},
	{selfappraisal.ErrAccessDenied, mapping{http.StatusForbidden, "forbidden"}},
}

// DomainFail writes a mapped domain error, falling back to a generic
// 500 for anything not in the table.
func DomainFail(w http.ResponseWriter, err error, requestID string) {
	for _, entry := range errorTable {
		if errors.Is(err, entry.err) {
			Fail(w, entry.status, entry.code, err.Error(), requestID)
			return
		}
	}
	Fail(w, http.StatusInternalServerError, "internal_error", "internal server error", requestID)
}
