package domain

// SubscriptionPlan is an entry of the static plan catalog.
type SubscriptionPlan struct {
	ID       Tier     `json:"id"`
	Name     string   `json:"name"`
	Price    float64  `json:"price"`
	Features []string `json:"features"`
	Popular  bool     `json:"popular"`
}

var planCatalog = [...]SubscriptionPlan{
	{
		ID:    TierFree,
		Name:  "Free",
		Price: 0,
		Features: []string{
			"Access to basic tutorials",
			"Community forum",
			"Basic project showcase",
			"Limited cheatsheets",
		},
	},
	{
		ID:      TierPremium,
		Name:    "Premium",
		Price:   9.99,
		Popular: true,
		Features: []string{
			"All free features",
			"Advanced tutorials",
			"Priority support",
			"Full cheatsheet library",
			"Job board access",
			"Project collaboration tools",
		},
	},
	{
		ID:    TierPro,
		Name:  "Pro",
		Price: 19.99,
		Features: []string{
			"All premium features",
			"Admin dashboard access",
			"Custom branding",
			"Analytics dashboard",
			"Priority job listings",
			"Mentorship program",
			"Exclusive events",
		},
	},
}

// Plans returns a copy of the plan catalog in display order.
func Plans() []SubscriptionPlan {
	plans := make([]SubscriptionPlan, len(planCatalog))
	for i, p := range planCatalog {
		p.Features = append([]string(nil), p.Features...)
		plans[i] = p
	}
	return plans
}

// PlanFor returns the catalog entry for tier, falling back to the free plan.
func PlanFor(tier Tier) SubscriptionPlan {
	for _, p := range Plans() {
		if p.ID == tier {
			return p
		}
	}
	return Plans()[0]
}
