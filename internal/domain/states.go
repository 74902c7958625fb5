package domain

// usStateNames maps USPS state, district, and territory names to their codes.
var usStateNames = map[string]string{
	"ALABAMA":                        "AL",
	"ALASKA":                         "AK",
	"ARIZONA":                        "AZ",
	"ARKANSAS":                       "AR",
	"CALIFORNIA":                     "CA",
	"COLORADO":                       "CO",
	"CONNECTICUT":                    "CT",
	"DELAWARE":                       "DE",
	"FLORIDA":                        "FL",
	"GEORGIA":                        "GA",
	"HAWAII":                         "HI",
	"IDAHO":                          "ID",
	"ILLINOIS":                       "IL",
	"INDIANA":                        "IN",
	"IOWA":                           "IA",
	"KANSAS":                         "KS",
	"KENTUCKY":                       "KY",
	"LOUISIANA":                      "LA",
	"MAINE":                          "ME",
	"MARYLAND":                       "MD",
	"MASSACHUSETTS":                  "MA",
	"MICHIGAN":                       "MI",
	"MINNESOTA":                      "MN",
	"MISSISSIPPI":                    "MS",
	"MISSOURI":                       "MO",
	"MONTANA":                        "MT",
	"NEBRASKA":                       "NE",
	"NEVADA":                         "NV",
	"NEW HAMPSHIRE":                  "NH",
	"NEW JERSEY":                     "NJ",
	"NEW MEXICO":                     "NM",
	"NEW YORK":                       "NY",
	"NORTH CAROLINA":                 "NC",
	"NORTH DAKOTA":                   "ND",
	"OHIO":                           "OH",
	"OKLAHOMA":                       "OK",
	"OREGON":                         "OR",
	"PENNSYLVANIA":                   "PA",
	"RHODE ISLAND":                   "RI",
	"SOUTH CAROLINA":                 "SC",
	"SOUTH DAKOTA":                   "SD",
	"TENNESSEE":                      "TN",
	"TEXAS":                          "TX",
	"UTAH":                           "UT",
	"VERMONT":                        "VT",
	"VIRGINIA":                       "VA",
	"WASHINGTON":                     "WA",
	"WEST VIRGINIA":                  "WV",
	"WISCONSIN":                      "WI",
	"WYOMING":                        "WY",
	"DISTRICT OF COLUMBIA":           "DC",
	"AMERICAN SAMOA":                 "AS",
	"GUAM":                           "GU",
	"NORTHERN MARIANA ISLANDS":       "MP",
	"PUERTO RICO":                    "PR",
	"VIRGIN ISLANDS":                 "VI",
	"US VIRGIN ISLANDS":              "VI",
	"FEDERATED STATES OF MICRONESIA": "FM",
	"MARSHALL ISLANDS":               "MH",
	"PALAU":                          "PW",
}

// usStateCodes is the set of recognized USPS codes, including the military
// APO/FPO pseudo-states.
var usStateCodes = func() map[string]struct{} {
	codes := map[string]struct{}{"AA": {}, "AE": {}, "AP": {}}
	for _, code := range usStateNames {
		codes[code] = struct{}{}
	}
	return codes
}()

// IsStateCode reports whether s is a recognized 2-letter USPS code.
func IsStateCode(s string) bool {
	_, ok := usStateCodes[s]
	return ok
}
