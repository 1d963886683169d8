package claims

// ClaimReport is the terminal artifact of a claim: the canonical
// assessment record written back by the report persistence step after
// the assessment model has consumed the merged payload. At most one
// report exists per claim, and its presence is authoritative proof of
// completion regardless of what the originating execution reports.
type ClaimReport struct {
	ClaimID string `dynamodbav:"claimId" json:"claimId"`

	CallRecordingsSummary string     `dynamodbav:"callRecordingsSummary" json:"callRecordingsSummary"`
	ClaimInfo             ClaimInfo  `dynamodbav:"claimInfo" json:"claimInfo"`
	DescriptionOfDamage   string     `dynamodbav:"descriptionOfDamage" json:"descriptionOfDamage"`
	VendorEstimates       []Estimate `dynamodbav:"estimatesOfTotalCostToRepairPerEachVendor" json:"estimatesOfTotalCostToRepairPerEachVendor"`
	FraudWarning          bool       `dynamodbav:"fraudWarning" json:"fraudWarning"`
	IncidentInfo          Incident   `dynamodbav:"incidentInfo" json:"incidentInfo"`
	Insights              string     `dynamodbav:"insights" json:"insights"`
	Observations          string     `dynamodbav:"observations" json:"observations"`
	PolicyHolderDetails   Holder     `dynamodbav:"policyHolderDetails" json:"policyHolderDetails"`
	PolicyInfo            Policy     `dynamodbav:"policyInfo" json:"policyInfo"`
	PolicyNo              string     `dynamodbav:"policyNo" json:"policyNo"`
	ProofOfDamage         []Evidence `dynamodbav:"proofOfDamage" json:"proofOfDamage"`
	PropertyInfo          Property   `dynamodbav:"propertyInfo" json:"propertyInfo"`
	Suspicion             string     `dynamodbav:"suspicion" json:"suspicion"`
	Witness               Witness    `dynamodbav:"witness" json:"witness"`

	// RiskScore is 1-10 (10 = highest fraud risk), scored by the
	// assessment model: fraud indicators 4 pts, missing documentation
	// 2 pts, data inconsistencies 2 pts, tampered evidence 2 pts.
	RiskScore int `dynamodbav:"riskScore" json:"riskScore"`

	// RecommendedAction is APPROVE (risk 1-3), INVESTIGATE (4-7) or
	// DENY (8-10), optionally followed by brief reasoning.
	RecommendedAction string `dynamodbav:"recommendedAction" json:"recommendedAction"`

	Inconsistencies []string `dynamodbav:"inconsistencies" json:"inconsistencies"`
}

// ClaimInfo captures what the claimant filed.
type ClaimInfo struct {
	ClaimDate            string `dynamodbav:"claimDate" json:"claimDate"`
	ClaimantSignature    string `dynamodbav:"claimantSignature" json:"claimantSignature"`
	EstimatedDamageValue string `dynamodbav:"estimatedDamageValue" json:"estimatedDamageValue"`
	EstimatedRepairCost  string `dynamodbav:"estimatedRepairCost" json:"estimatedRepairCost"`
}

// Estimate is one vendor's total-cost-to-repair quote.
type Estimate struct {
	ScopeOfWork []string `dynamodbav:"scopeOfWork" json:"scopeOfWork"`
	TotalCost   string   `dynamodbav:"totalCost" json:"totalCost"`
	VendorName  string   `dynamodbav:"vendorName" json:"vendorName"`
}

// Incident describes when, where and what happened.
type Incident struct {
	Date        string `dynamodbav:"date" json:"date"`
	Description string `dynamodbav:"description" json:"description"`
	Time        string `dynamodbav:"time" json:"time"`
	Location    string `dynamodbav:"location" json:"location"`
}

// Holder is the policy holder's contact details.
type Holder struct {
	Address      string `dynamodbav:"address" json:"address"`
	EmailAddress string `dynamodbav:"emailAddress" json:"emailAddress"`
	Name         string `dynamodbav:"name" json:"name"`
	PhoneNumber  string `dynamodbav:"phoneNumber" json:"phoneNumber"`
}

// Policy identifies the issuing company and agent.
type Policy struct {
	AgentName        string `dynamodbav:"agentName" json:"agentName"`
	Contact          string `dynamodbav:"contact" json:"contact"`
	InsuranceCompany string `dynamodbav:"insuranceCompany" json:"insuranceCompany"`
}

// Evidence is one submitted proof-of-damage artifact with its validity
// assessment.
type Evidence struct {
	Description string `dynamodbav:"description" json:"description"`
	FileName    string `dynamodbav:"fileName" json:"fileName"`
	Validity    string `dynamodbav:"validity" json:"validity"`
	Type        string `dynamodbav:"type" json:"type"`
}

// Property describes the insured property.
type Property struct {
	AdditionalInfo PropertyFinancials `dynamodbav:"additionalInfo" json:"additionalInfo"`
	Address        string             `dynamodbav:"address" json:"address"`
	Type           string             `dynamodbav:"type" json:"type"`
}

// PropertyFinancials holds damage and repair valuations plus claim history.
type PropertyFinancials struct {
	DamagedValue  string `dynamodbav:"damagedValue" json:"damagedValue"`
	PreviousClaim bool   `dynamodbav:"previousClaim" json:"previousClaim"`
	RepairCost    string `dynamodbav:"repairCost" json:"repairCost"`
}

// Witness records witness availability and statement.
type Witness struct {
	Exists    bool   `dynamodbav:"exists" json:"exists"`
	Name      string `dynamodbav:"name" json:"name"`
	Signature bool   `dynamodbav:"signature" json:"signature"`
	Statement string `dynamodbav:"statement" json:"statement"`
}
