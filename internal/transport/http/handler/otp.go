package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/campus-otp/internal/application/otp"
	"github.com/campus-otp/internal/domain"
	"github.com/sirupsen/logrus"
)

const maxBodyBytes = 4 << 10

// OTPHandler exposes OTP issuance and verification.
type OTPHandler struct {
	svc otp.Service
	log *logrus.Logger
}

func NewOTPHandler(svc otp.Service, log *logrus.Logger) *OTPHandler {
	return &OTPHandler{svc: svc, log: log}
}

type requestOTPBody struct {
	Email string `json:"email"`
}

type verifyOTPBody struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

func (h *OTPHandler) Request(w http.ResponseWriter, r *http.Request) {
	var body requestOTPBody
	if !decodeBody(w, r, &body) {
		return
	}
	res, err := h.svc.RequestOTP(r.Context(), otp.RequestOTPRequest{Email: body.Email})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Success: true, Message: "OTP sent to " + res.Identity})
}

func (h *OTPHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var body verifyOTPBody
	if !decodeBody(w, r, &body) {
		return
	}
	res, err := h.svc.VerifyOTP(r.Context(), otp.VerifyOTPRequest{Email: body.Email, OTP: body.OTP})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Success: true, Message: "OTP verified successfully", Token: res.Token})
}

func (h *OTPHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, msg, kind := httpError(err)
	if kind == domain.KindInternal {
		h.log.WithError(err).WithField("path", r.URL.Path).Error("otp request failed")
	}
	writeError(w, status, msg, kind)
}

// decodeBody writes a 400 and returns false when the body is not a JSON object.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
	if err == nil {
		return true
	}
	msg := "invalid request body"
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		msg = "request body too large"
	} else if errors.Is(err, io.EOF) {
		msg = "request body is empty"
	}
	writeError(w, http.StatusBadRequest, msg, domain.KindInvalidRequest)
	return false
}
