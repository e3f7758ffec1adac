package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zobaczyc-morze/crewreg/internal/domain"
)

func TestSubmitSensitive(t *testing.T) {
	token := uuid.New()
	reg := domain.Registration{ID: uuid.New(), AccessToken: token, Status: domain.StatusQualified}

	registrations := &mockRegistrationServicer{
		getByToken: func(_ context.Context, _ uuid.UUID) (domain.Registration, error) { return reg, nil },
	}
	sensitive := &mockSensitiveServicer{
		submit: func(_ context.Context, gotReg domain.Registration, rec domain.SensitiveRecord) (domain.MaskedSensitiveRecord, error) {
			require.Equal(t, reg.ID, gotReg.ID)
			require.Equal(t, "90031412345", rec.NationalID)
			require.True(t, rec.Consent)
			rec.RegistrationID = gotReg.ID
			return rec.Masked(), nil
		},
	}
	h := newTestHandler(serverDeps{registrations: registrations, sensitive: sensitive})

	body := map[string]any{
		"national_id":     "90031412345",
		"document_type":   "passport",
		"document_number": "EH1234567",
		"consent":         true,
	}
	req := httptest.NewRequest(http.MethodPost, "/registrations/"+token.String()+"/sensitive", jsonBody(t, body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "90********5", "the response is masked")
	assert.NotContains(t, rec.Body.String(), "90031412345", "the plaintext never echoes back")
}

func TestSubmitSensitive_NotQualified(t *testing.T) {
	token := uuid.New()
	registrations := &mockRegistrationServicer{
		getByToken: func(_ context.Context, _ uuid.UUID) (domain.Registration, error) {
			return domain.Registration{ID: uuid.New(), AccessToken: token, Status: domain.StatusPending}, nil
		},
	}
	sensitive := &mockSensitiveServicer{
		submit: func(_ context.Context, _ domain.Registration, _ domain.SensitiveRecord) (domain.MaskedSensitiveRecord, error) {
			return domain.MaskedSensitiveRecord{}, domain.ErrForbidden
		},
	}
	h := newTestHandler(serverDeps{registrations: registrations, sensitive: sensitive})

	req := httptest.NewRequest(http.MethodPost, "/registrations/"+token.String()+"/sensitive", jsonBody(t, map[string]any{}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGetMaskedSensitive(t *testing.T) {
	regID := uuid.New()
	registrations := &mockRegistrationServicer{
		getByID: func(_ context.Context, id uuid.UUID) (domain.Registration, error) {
			require.Equal(t, regID, id)
			return domain.Registration{ID: id, Status: domain.StatusQualified}, nil
		},
	}
	sensitive := &mockSensitiveServicer{
		getMasked: func(_ context.Context, reg domain.Registration) (domain.MaskedSensitiveRecord, error) {
			return domain.SensitiveRecord{
				RegistrationID: reg.ID,
				NationalID:     "90031412345",
				DocumentType:   domain.DocumentPassport,
				DocumentNumber: "EH1234567",
				Consent:        true,
			}.Masked(), nil
		},
	}
	h := newTestHandler(serverDeps{registrations: registrations, sensitive: sensitive})

	req := httptest.NewRequest(http.MethodGet, "/staff/registrations/"+regID.String()+"/sensitive", nil)
	req.Header.Set("Authorization", bearerToken(t, "staff"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "E*******7")
	assert.NotContains(t, rec.Body.String(), "EH1234567")
}
