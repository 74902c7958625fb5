package domain

// Code is a decode entry for a coded registry field.
type Code struct {
	Code        string
	Description string
}

// StatusCodes decode Aircraft.RegStatus.
var StatusCodes = []Code{
	{"V", "Valid"},
	{"M", "Valid - Manufacturer/Dealer"},
	{"T", "Valid - Trainee"},
	{"R", "Registration Pending"},
	{"N", "Non-Citizen Corp (flight hours not reported)"},
	{"E", "Revoked by Enforcement"},
	{"W", "Invalid/Ineffective"},
	{"D", "Expired Dealer"},
	{"A", "Triennial Form Mailed"},
	{"S", "Second Triennial Form Mailed"},
	{"X", "Enforcement Letter"},
	{"Z", "Permanent Reserved"},
	{"1", "Triennial Form Undeliverable"},
	{"2", "N-Number Assigned - Not Yet Registered"},
	{"3", "N-Number Assigned (Non Type Certificated) - Not Yet Registered"},
	{"4", "N-Number Assigned (Import) - Not Yet Registered"},
	{"5", "Reserved N-Number"},
	{"6", "Administratively Canceled"},
	{"7", "Sale Reported"},
	{"8", "Second Triennial Mailed - No Response"},
	{"9", "Registration Revoked"},
	{"10", "N-Number Assigned - Pending Cancellation"},
	{"11", "N-Number Assigned (Amateur) - Pending Cancellation"},
	{"12", "N-Number Assigned (Import) - Pending Cancellation"},
	{"13", "Registration Expired"},
	{"14", "First Notice for Re-Registration"},
	{"15", "Second Notice for Re-Registration"},
	{"16", "Registration Expired - Pending Cancellation"},
	{"17", "Sale Reported - Pending Cancellation"},
	{"18", "Sale Reported - Canceled"},
	{"19", "Registration Pending - Pending Cancellation"},
	{"20", "Registration Pending - Canceled"},
	{"21", "Revoked - Pending Cancellation"},
	{"22", "Revoked - Canceled"},
	{"23", "Expired Dealer - Pending Cancellation"},
	{"24", "Third Notice for Re-Registration"},
	{"25", "First Notice for Registration Renewal"},
	{"26", "Second Notice for Registration Renewal"},
	{"27", "Registration Expired"},
	{"28", "Third Notice for Registration Renewal"},
	{"29", "Registration Expired - Pending Cancellation"},
}

// AirworthinessClasses decode Aircraft.AirworthinessClass.
var AirworthinessClasses = []Code{
	{"1", "Standard"},
	{"2", "Limited"},
	{"3", "Restricted"},
	{"4", "Experimental"},
	{"5", "Provisional"},
	{"6", "Multiple"},
	{"7", "Primary"},
	{"8", "Special Flight Permit"},
	{"9", "Light Sport"},
}

// OwnerTypes decode Owner.OwnerType.
var OwnerTypes = []Code{
	{"1", "Individual"},
	{"2", "Partnership"},
	{"3", "Corporation"},
	{"4", "Co-Owned"},
	{"5", "Government"},
	{"7", "LLC"},
	{"8", "Non-Citizen Corporation"},
	{"9", "Non-Citizen Co-Owned"},
}

// TrustOwnerTypes are the owner types flagged by owners_summary.any_trust_flag.
var TrustOwnerTypes = []string{"2", "4", "5"}

// CodeTable is a named decode table.
type CodeTable struct {
	Name  string
	Codes []Code
}

// CodeTables lists the decode tables published next to the relations.
var CodeTables = []CodeTable{
	{Name: "status_codes", Codes: StatusCodes},
	{Name: "airworthiness_classes", Codes: AirworthinessClasses},
	{Name: "owner_types", Codes: OwnerTypes},
}
