package patterns

import "github.com/medhold/dispute-cli/internal/model"

// Builtin returns the default catalog: tactic patterns and claim detectors
// tuned for Norwegian institutional response letters, with English cues for
// the occasional bilingual reply.
func Builtin() (*Library, error) {
	table, err := NewClaimTable(DefaultClaimPairs())
	if err != nil {
		return nil, err
	}
	return NewLibrary(builtinPatterns(), table)
}

// DefaultClaimPairs returns the built-in claim-compatibility table rows.
func DefaultClaimPairs() []ClaimPair {
	return []ClaimPair{
		{
			A: model.ClaimDenial, B: model.ClaimSettlementOffer,
			FindingType:     "settlement_contradiction",
			BaseRate:        0.90,
			Polarities:      PairBothAssert,
			LegalBasis:      "avtaleloven § 36",
			CounterStrategy: "cite_offer_as_liability_signal",
		},
		{
			A: model.ClaimLiabilityDenial, B: model.ClaimLiabilityAdmission,
			FindingType:     "liability_contradiction",
			BaseRate:        0.90,
			Polarities:      PairBothAssert,
			LegalBasis:      "skadeserstatningsloven § 5-1",
			CounterStrategy: "demand_consistent_position",
		},
		{
			A: model.ClaimPaymentRefusal, B: model.ClaimPaymentPromise,
			FindingType:     "payment_contradiction",
			BaseRate:        0.85,
			Polarities:      PairBothAssert,
			LegalBasis:      "forsinkelsesrenteloven § 2",
			CounterStrategy: "demand_payment_per_promise",
		},
		{
			A: model.ClaimCoverageDenied, B: model.ClaimCoverageConfirmed,
			FindingType:     "coverage_contradiction",
			BaseRate:        0.85,
			Polarities:      PairBothAssert,
			LegalBasis:      "forsikringsavtaleloven § 4-2",
			CounterStrategy: "invoke_coverage_confirmation",
		},
		{
			A: model.ClaimDenial, B: model.ClaimLiabilityAdmission,
			FindingType:     "admission_contradiction",
			BaseRate:        0.80,
			Polarities:      PairBothAssert,
			LegalBasis:      "tvisteloven § 21-4",
			CounterStrategy: "cite_admission_against_denial",
		},
		{
			A: model.ClaimSettlementOffer, B: model.ClaimSettlementOffer,
			FindingType:     "settlement_reversal",
			BaseRate:        0.80,
			Polarities:      PairOpposing,
			LegalBasis:      "avtaleloven § 7",
			CounterStrategy: "hold_to_original_offer",
		},
		{
			A: model.ClaimPaymentPromise, B: model.ClaimPaymentPromise,
			FindingType:     "payment_reversal",
			BaseRate:        0.80,
			Polarities:      PairOpposing,
			LegalBasis:      "forsinkelsesrenteloven § 2",
			CounterStrategy: "demand_promised_payment",
		},
	}
}

func builtinPatterns() []model.Pattern {
	return append(tacticPatterns(), claimDetectors()...)
}

func tacticPatterns() []model.Pattern {
	return []model.Pattern{
		// deflection
		{
			ID:       "deflection_blame_shift",
			Name:     "Blame shift",
			Category: model.CategoryDeflection,
			Phrases: []string{
				"du må selv", "ditt eget ansvar", "skyldes forhold på din side",
				"utenfor vår kontroll", "beyond our control",
			},
			Strength:        0.65,
			CounterStrategy: "redirect_burden_of_proof",
			LegalBasis:      "forbrukerkjøpsloven § 30",
			BaseSuccessRate: 0.70,
			Exemplars:       []string{"Dette skyldes forhold på din side."},
		},
		{
			ID:       "deflection_third_party",
			Name:     "Third-party referral",
			Category: model.CategoryDeflection,
			Phrases: []string{
				"kontakte din egen", "henvise deg til", "rette kravet mot",
				"ikke rett instans",
			},
			Strength:        0.60,
			CounterStrategy: "insist_single_point_of_contact",
			LegalBasis:      "god forretningsskikk",
			BaseSuccessRate: 0.65,
			Exemplars:       []string{"Vi må henvise deg til din egen forsikring."},
		},
		{
			ID:       "deflection_policy_shield",
			Name:     "Policy shield",
			Category: model.CategoryDeflection,
			Phrases: []string{
				"i henhold til våre rutiner", "våre interne retningslinjer",
				"standard praksis", "vår faste praksis",
			},
			Strength:        0.55,
			CounterStrategy: "request_written_policy",
			BaseSuccessRate: 0.60,
		},

		// pressure
		{
			ID:       "pressure_deadline",
			Name:     "Acceptance deadline",
			Category: model.CategoryPressure,
			Phrases: []string{
				"innen 14 dager", "frist for å akseptere", "tilbudet bortfaller",
				"siste frist",
			},
			Keywords:        []string{"svarfrist"},
			Strength:        0.70,
			CounterStrategy: "reject_artificial_deadline",
			LegalBasis:      "avtaleloven § 36",
			BaseSuccessRate: 0.75,
			Exemplars:       []string{"Tilbudet bortfaller dersom vi ikke hører fra deg innen 14 dager."},
		},
		{
			ID:       "pressure_final_offer",
			Name:     "Final offer framing",
			Category: model.CategoryPressure,
			Phrases: []string{
				"endelig tilbud", "siste tilbud", "ikke forhandlingsbart", "final offer",
			},
			Strength:        0.75,
			CounterStrategy: "continue_negotiation",
			BaseSuccessRate: 0.72,
		},
		{
			ID:       "pressure_offer_withdrawal",
			Name:     "Offer withdrawal threat",
			Category: model.CategoryPressure,
			Phrases: []string{
				"ellers bortfaller", "dersom du ikke aksepterer", "trekkes tilbudet",
			},
			Strength:        0.65,
			CounterStrategy: "document_pressure",
			BaseSuccessRate: 0.68,
		},

		// intimidation
		{
			ID:       "intimidation_legal_threat",
			Name:     "Legal escalation threat",
			Category: model.CategoryIntimidation,
			Phrases: []string{
				"rettslige skritt", "våre advokater", "oversendes til inkasso",
			},
			Keywords:        []string{"saksomkostninger"},
			Strength:        0.80,
			CounterStrategy: "call_litigation_bluff",
			LegalBasis:      "tvisteloven kapittel 5",
			BaseSuccessRate: 0.78,
			Exemplars:       []string{"Saken vil bli oversendt våre advokater."},
		},
		{
			ID:       "intimidation_cost_warning",
			Name:     "Cost warning",
			Category: model.CategoryIntimidation,
			Phrases: []string{
				"betydelige kostnader", "for egen regning", "risikerer å måtte betale",
			},
			Strength:        0.70,
			CounterStrategy: "cite_small_claims_costs",
			LegalBasis:      "tvisteloven § 6-13",
			BaseSuccessRate: 0.70,
		},
		{
			ID:       "intimidation_futility",
			Name:     "Futility messaging",
			Category: model.CategoryIntimidation,
			Phrases: []string{
				"ingen hensikt å klage", "vil ikke føre frem", "nytteløst",
			},
			Strength:        0.75,
			CounterStrategy: "cite_ombudsman_route",
			LegalBasis:      "klagenemndspraksis",
			BaseSuccessRate: 0.74,
		},

		// gaslighting
		{
			ID:       "gaslighting_memory",
			Name:     "Record denial",
			Category: model.CategoryGaslighting,
			Phrases: []string{
				"har aldri lovet", "det ble aldri avtalt", "du må ha misforstått",
				"aldri mottatt",
			},
			Strength:        0.75,
			CounterStrategy: "produce_written_record",
			BaseSuccessRate: 0.76,
			Exemplars:       []string{"Vi har aldri lovet noen kompensasjon."},
		},
		{
			ID:       "gaslighting_minimize",
			Name:     "Loss minimization",
			Category: model.CategoryGaslighting,
			Phrases: []string{
				"bagatellmessig", "ubetydelig", "mindre avvik", "ikke vesentlig",
			},
			Strength:        0.60,
			CounterStrategy: "quantify_actual_loss",
			LegalBasis:      "forbrukerkjøpsloven § 15",
			BaseSuccessRate: 0.66,
		},
		{
			ID:       "gaslighting_reframe",
			Name:     "Subjectivity reframe",
			Category: model.CategoryGaslighting,
			Phrases: []string{
				"slik du velger å fremstille", "din oppfatning", "subjektiv opplevelse",
			},
			Strength:        0.65,
			CounterStrategy: "anchor_to_documents",
			BaseSuccessRate: 0.69,
		},
	}
}

func claimDetectors() []model.Pattern {
	return []model.Pattern{
		{
			ID:       "claim_denial",
			Name:     "Claim denial",
			Category: model.CategoryContradiction,
			ClaimKey: model.ClaimDenial,
			Phrases: []string{
				"avslår kravet", "avslår ditt krav", "avviser kravet", "kravet avvises",
				"kan ikke imøtekomme kravet", "reject your claim", "claim is denied",
			},
		},
		{
			ID:       "claim_settlement_offer",
			Name:     "Settlement offer",
			Category: model.CategoryContradiction,
			ClaimKey: model.ClaimSettlementOffer,
			Phrases: []string{
				"tilbyr vi deg", "tilbyr vi et oppgjør", "oppgjør på kr",
				"tilbud om minnelig løsning", "minnelig oppgjør", "offer a settlement",
			},
		},
		{
			ID:       "claim_liability_admission",
			Name:     "Liability admission",
			Category: model.CategoryContradiction,
			ClaimKey: model.ClaimLiabilityAdmission,
			Phrases: []string{
				"vi erkjenner ansvar", "vi er ansvarlige", "påtar oss ansvaret",
				"accept liability",
			},
		},
		{
			ID:       "claim_liability_denial",
			Name:     "Liability denial",
			Category: model.CategoryContradiction,
			ClaimKey: model.ClaimLiabilityDenial,
			Phrases: []string{
				"ikke ansvarlig", "ikke ansvarlige", "avviser ethvert ansvar",
				"uten ansvar for", "not liable", "no liability",
			},
		},
		{
			ID:       "claim_payment_promise",
			Name:     "Payment promise",
			Category: model.CategoryContradiction,
			ClaimKey: model.ClaimPaymentPromise,
			Phrases: []string{
				"vil utbetale", "utbetaler vi", "utbetaling skjer",
				"beløpet overføres", "will be paid",
			},
		},
		{
			ID:       "claim_payment_refusal",
			Name:     "Payment refusal",
			Category: model.CategoryContradiction,
			ClaimKey: model.ClaimPaymentRefusal,
			Phrases: []string{
				"ingen utbetaling", "utbetales ikke", "ikke utbetale",
				"nekter å betale", "will not pay",
			},
		},
		{
			ID:       "claim_coverage_confirmed",
			Name:     "Coverage confirmed",
			Category: model.CategoryContradiction,
			ClaimKey: model.ClaimCoverageConfirmed,
			Phrases: []string{
				"dekkes av forsikringen", "omfattes av dekningen", "er dekket",
				"covered by the policy",
			},
		},
		{
			ID:       "claim_coverage_denied",
			Name:     "Coverage denied",
			Category: model.CategoryContradiction,
			ClaimKey: model.ClaimCoverageDenied,
			Phrases: []string{
				"dekkes ikke", "ikke dekket", "utenfor dekningen",
				"omfattes ikke av", "not covered",
			},
		},
		// deadline_set is bound to no built-in pair row; custom catalogs
		// pair it with settlement_offer or payment_promise.
		{
			ID:       "claim_deadline_set",
			Name:     "Deadline set",
			Category: model.CategoryContradiction,
			ClaimKey: model.ClaimDeadlineSet,
			Phrases: []string{
				"frist for å akseptere", "innen fristen", "fristen utløper",
				"svarfrist", "deadline for acceptance",
			},
		},
	}
}
