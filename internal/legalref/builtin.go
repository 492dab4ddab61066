package legalref

import "github.com/medhold/dispute-cli/internal/model"

// Builtin returns the catalog shipped with the binary: provisions and
// complaints-board practice for the contradiction finding types, plus the
// tactic findings that carry a legal basis. The entries are a curated
// starting set for report context, not a legal research service.
func Builtin() *StaticCatalog {
	return NewStaticCatalog(builtinReferences())
}

func builtinReferences() []model.LegalReference {
	return []model.LegalReference{
		{
			FindingType: "settlement_contradiction",
			Provisions: []model.Provision{
				{
					Statute: "avtaleloven", Section: "§ 36",
					Summary: "terms may be set aside or revised when enforcing them would be unreasonable",
				},
			},
			Precedents: []model.Precedent{
				{
					Citation: "Rt. 2013 s. 388",
					Summary:  "a settlement offer weighed as evidence of the offeror's own risk assessment",
				},
			},
		},
		{
			FindingType: "liability_contradiction",
			Provisions: []model.Provision{
				{
					Statute: "skadeserstatningsloven", Section: "§ 5-1",
					Summary: "apportionment rules when responsibility for a loss is contested",
				},
			},
			Precedents: []model.Precedent{
				{
					Citation: "HR-2016-293-A",
					Summary:  "shifting liability positions counted against the party advancing them",
				},
			},
		},
		{
			FindingType: "payment_contradiction",
			Provisions: []model.Provision{
				{
					Statute: "forsinkelsesrenteloven", Section: "§ 2",
					Summary: "default interest accrues from the agreed or demanded due date",
				},
			},
			Precedents: []model.Precedent{
				{
					Citation: "FinKN-2021-312",
					Summary:  "a payment promised in writing must be honored on the promised terms",
				},
			},
		},
		{
			FindingType: "coverage_contradiction",
			Provisions: []model.Provision{
				{
					Statute: "forsikringsavtaleloven", Section: "§ 4-2",
					Summary: "limits on invoking reservations after the insurer has confirmed cover",
				},
			},
			Precedents: []model.Precedent{
				{
					Citation: "FinKN-2020-104",
					Summary:  "an insurer held to its written confirmation of cover",
				},
			},
		},
		{
			FindingType: "admission_contradiction",
			Provisions: []model.Provision{
				{
					Statute: "tvisteloven", Section: "§ 21-4",
					Summary: "parties owe truthful and complete statements about the facts",
				},
			},
			Precedents: []model.Precedent{
				{
					Citation: "Rt. 2008 s. 1078",
					Summary:  "weight of a prior admission when a party later reverses position",
				},
			},
		},
		{
			FindingType: "settlement_reversal",
			Provisions: []model.Provision{
				{
					Statute: "avtaleloven", Section: "§ 7",
					Summary: "an offer binds the offeror until it lapses or is lawfully revoked",
				},
			},
		},
		{
			FindingType: "payment_reversal",
			Provisions: []model.Provision{
				{
					Statute: "forsinkelsesrenteloven", Section: "§ 2",
					Summary: "default interest accrues from the agreed or demanded due date",
				},
			},
		},
		{
			FindingType: "deflection_blame_shift",
			Provisions: []model.Provision{
				{
					Statute: "forbrukerkjøpsloven", Section: "§ 30",
					Summary: "the seller answers for losses a defect causes the consumer",
				},
			},
		},
		{
			FindingType: "deflection_third_party",
			Provisions: []model.Provision{
				{
					Statute: "markedsføringsloven", Section: "§ 25",
					Summary: "business conduct toward consumers must accord with good business practice",
				},
			},
		},
		{
			FindingType: "pressure_deadline",
			Provisions: []model.Provision{
				{
					Statute: "avtaleloven", Section: "§ 36",
					Summary: "acceptance deadlines imposed to force a poor settlement can be set aside",
				},
			},
		},
		{
			FindingType: "intimidation_legal_threat",
			Provisions: []model.Provision{
				{
					Statute: "tvisteloven", Section: "kapittel 5",
					Summary: "duties before bringing an action, including warning and attempting amicable resolution",
				},
			},
		},
		{
			FindingType: "intimidation_cost_warning",
			Provisions: []model.Provision{
				{
					Statute: "tvisteloven", Section: "§ 6-13",
					Summary: "cost liability in conciliation board proceedings is capped",
				},
			},
		},
		{
			FindingType: "intimidation_futility",
			Precedents: []model.Precedent{
				{
					Citation: "FinKN-2018-072",
					Summary:  "complaints boards regularly overturn first-line refusals",
				},
			},
		},
		{
			FindingType: "gaslighting_minimize",
			Provisions: []model.Provision{
				{
					Statute: "forbrukerkjøpsloven", Section: "§ 15",
					Summary: "goods and services must conform to the agreement and ordinary expectations",
				},
			},
		},
	}
}
