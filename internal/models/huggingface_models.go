package models

// InferenceRequest is the body posted to the hosted classifier.
type InferenceRequest struct {
	Inputs []string `json:"inputs"`
}

// LabelScore is one entry of a rank-ordered classifier result.
type LabelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// InferenceResponse holds one ranked list per input, in input order.
type InferenceResponse [][]LabelScore
