package main

import (
	"fasaldoc/models"
	"fasaldoc/regions"
)

// Request/response DTOs. Keep them minimal and explicit.

type registerReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Region   string `json:"region,omitempty"`
	Language string `json:"language,omitempty"` // language code, empty = auto
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResp struct {
	Token string `json:"token"`
}

type updateProfileReq struct {
	Region   *string `json:"region,omitempty"`
	Language *string `json:"language,omitempty"`
}

type diagnoseReq struct {
	Region      string `json:"region"`
	Crop        string `json:"crop"`
	Language    string `json:"language,omitempty"`
	ImageBase64 string `json:"imageBase64"`
}

type followUpReq struct {
	ImageBase64 string `json:"imageBase64"`
	Language    string `json:"language,omitempty"`
}

type followUpResp struct {
	Case       models.CaseRecord          `json:"case"`
	Assessment *models.FollowUpAssessment `json:"assessment,omitempty"`
}

type caseResp = followUpResp

type updateCaseReq struct {
	Note   string `json:"note"`
	Status string `json:"status"`
}

type chatReq struct {
	Region   string `json:"region"`
	Crop     string `json:"crop"`
	Language string `json:"language,omitempty"`
	Message  string `json:"message"`
}

type regionSummary struct {
	Name          string `json:"name"`
	Dialect       string `json:"dialect"`
	TTSLang       string `json:"ttsLang"`
	CurrentSeason string `json:"currentSeason"`
}

type regionResp struct {
	regions.Profile
	CurrentSeason string `json:"currentSeason"`
}

type languageResp struct {
	Code string `json:"code"`
	Name string `json:"name"`
}
