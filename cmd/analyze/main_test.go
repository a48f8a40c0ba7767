package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Darksun1310/forensic-persona-linker/internal/domain"
)

func TestPrintComparison(t *testing.T) {
	var buf bytes.Buffer
	printComparison(&buf, &domain.VendorComparison{
		PredictResponse: domain.PredictResponse{
			Verdict: domain.VerdictNoMatch,
			Score:   12,
			Report: []domain.ReportEntry{
				{Feature: "Shipping Origin", Value: "No Match ('USA' vs 'UK')", Strength: "Strong Counter-Indicator", Reasoning: "different"},
			},
		},
		Listings: [2]domain.Listing{
			{Vendor: "alpha", Origin: "USA", Description: "kush"},
			{Vendor: "bravo", Origin: "UK", Description: "tabs"},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "Verdict: No Match (score 12/100)")
	assert.Contains(t, out, "Listing 2: bravo")
	assert.Contains(t, out, "No Match ('USA' vs 'UK')")
	assert.Contains(t, out, "Strong Counter-Indicator")
}
