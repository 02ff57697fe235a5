package model

import "encoding/json"

// Request bodies accepted by the HTTP API. Each one has a matching schema
// under schemas/.

type UploadRequest struct {
	UserID         string `json:"userId"`
	CVText         string `json:"cvText"`
	TranscriptText string `json:"transcriptText"`
}

type ChatRequest struct {
	Message  string `json:"message"`
	Language string `json:"language,omitempty"`
	UserID   string `json:"userId,omitempty"`
}

type UserData struct {
	Language string `json:"language,omitempty"`
	UserID   string `json:"userId,omitempty"`
}

type StartRequest struct {
	UserInput   string                 `json:"user_input"`
	UserData    UserData               `json:"user_data"`
	ProfileHint map[string]interface{} `json:"profile_hint,omitempty"`
}

type ApplyRequest struct {
	JobID    string `json:"jobId"`
	Provider string `json:"provider,omitempty"`
	UserID   string `json:"userId,omitempty"`
	// AllowAutoApply is decoded loosely; only a JSON true counts as consent.
	AllowAutoApply interface{} `json:"allowAutoApply,omitempty"`
}

// Consent returns the flag when it is a JSON boolean and nil otherwise, so
// "true" as a string or 1 never grants consent.
func (r ApplyRequest) Consent() *bool {
	b, ok := r.AllowAutoApply.(bool)
	if !ok {
		return nil
	}
	return &b
}

// ConsentFromJSON reads only allowAutoApply from a raw apply body. A body that
// does not decode, or any other shape of the flag, yields nil.
func ConsentFromJSON(body []byte) *bool {
	var gate struct {
		AllowAutoApply interface{} `json:"allowAutoApply"`
	}
	if json.Unmarshal(body, &gate) != nil {
		return nil
	}
	return ApplyRequest{AllowAutoApply: gate.AllowAutoApply}.Consent()
}
