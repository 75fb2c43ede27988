package legal

import "strings"

// Country is a supported jurisdiction.
type Country struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	Constitution string `json:"constitution"`
	Description  string `json:"description"`
}

var countries = []Country{
	{
		Code:         "IN",
		Name:         "India",
		Constitution: "Indian Constitution",
		Description:  "The Constitution of India, adopted in 1950. Key aspects include: fundamental rights (Articles 12-35), directive principles of state policy (Articles 36-51), and the structure of government (Union, States, Union Territories). References IPC, CrPC, and state-specific laws.",
	},
	{
		Code:         "US",
		Name:         "United States",
		Constitution: "U.S. Constitution",
		Description:  "The Constitution of the United States with Bill of Rights. Covers federal system, separation of powers, and individual rights. References U.S.C., CFR, and state laws.",
	},
	{
		Code:         "UK",
		Name:         "United Kingdom",
		Constitution: "UK Constitutional Law",
		Description:  "Unwritten constitution based on common law, statutes, and conventions. Includes Parliamentary Sovereignty, Rule of Law, and statutory protections. References UK Acts of Parliament and common law principles.",
	},
	{
		Code:         "CA",
		Name:         "Canada",
		Constitution: "Canadian Constitution Act, 1982",
		Description:  "Constitution Act, 1982 with Canadian Charter of Rights and Freedoms. Federal parliamentary system. References Canadian Criminal Code, Civil Code of Quebec, and provincial laws.",
	},
	{
		Code:         "AU",
		Name:         "Australia",
		Constitution: "Australian Constitution",
		Description:  "The Constitution of the Commonwealth of Australia, adopted in 1901. Defines federal system and powers of Commonwealth and States. References Australian law and state-based legislation.",
	},
	{
		Code:         "ZA",
		Name:         "South Africa",
		Constitution: "South African Constitution, 1996",
		Description:  "The Constitution of the Republic of South Africa, 1996. Establishes democracy and human rights framework. References Bill of Rights and South African legislation.",
	},
	{
		Code:         "SG",
		Name:         "Singapore",
		Constitution: "Constitution of the Republic of Singapore",
		Description:  "The Constitution of Singapore, adopted in 1965. Defines fundamental liberties and structure of government. References Singapore Statutes and common law principles.",
	},
	{
		Code:         "MY",
		Name:         "Malaysia",
		Constitution: "Malaysian Federal Constitution",
		Description:  "The Federal Constitution of Malaysia, adopted in 1957. Covers fundamental liberties, rights of citizens, and federal system. References Malaysian Statutes.",
	},
	{
		Code:         "DE",
		Name:         "Germany",
		Constitution: "German Basic Law (Grundgesetz)",
		Description:  "The Basic Law for the Federal Republic of Germany, adopted in 1949. Emphasizes human dignity and constitutional rights. References German Civil Code (BGB) and Criminal Code (StGB).",
	},
	{
		Code:         "FR",
		Name:         "France",
		Constitution: "French Constitution (Fifth Republic)",
		Description:  "The Constitution of the Fifth Republic (1958). Defines presidential system and rights framework. References French Civil Code, Penal Code, and EU law.",
	},
	{
		Code:         "NZ",
		Name:         "New Zealand",
		Constitution: "New Zealand Constitutional Framework",
		Description:  "Unwritten constitution based on common law, statutes, and conventions. Key documents include Constitution Act 1986 and Bill of Rights Act 1990.",
	},
	{
		Code:         "JP",
		Name:         "Japan",
		Constitution: "Constitution of Japan",
		Description:  "The Constitution of Japan, adopted in 1947 post-WWII. Emphasizes pacifism and democracy. References Japanese Civil Code and Criminal Code.",
	},
}

// Countries returns a copy of the supported jurisdictions in display order.
func Countries() []Country {
	out := make([]Country, len(countries))
	copy(out, countries)
	return out
}

// DefaultCountry is the first entry of the table.
func DefaultCountry() Country {
	return countries[0]
}

// LookupCountry finds a country by code, case-insensitively.
func LookupCountry(code string) (Country, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, c := range countries {
		if c.Code == code {
			return c, true
		}
	}
	return Country{}, false
}

// ResolveCountry maps an optional code to a country. An empty code means the
// default; an unknown one reports false.
func ResolveCountry(code string) (Country, bool) {
	if strings.TrimSpace(code) == "" {
		return DefaultCountry(), true
	}
	return LookupCountry(code)
}
