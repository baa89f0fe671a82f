package provider

// renames maps every header spelling seen in CMS Physician Compare exports
// onto the canonical column names. Matching is exact. Canonical names are
// not listed: they pass through unchanged and bind to themselves.
var renames = map[string]string{
	// National Downloadable File, short headers.
	"NPI":                  "npi",
	"Ind_PAC_ID":           "pac_id",
	"Ind_enrl_ID":          "enrollment_id",
	"Provider Last Name":   "last_name",
	"Provider First Name":  "first_name",
	"Provider Middle Name": "middle_name",
	"suff":                 "suffix",
	"gndr":                 "gender",
	"Cred":                 "credential",
	"Med_sch":              "med_school",
	"Grd_yr":               "grad_year",
	"Pri_spec":             "pri_spec",
	"Sec_spec_1":           "sec_spec_1",
	"Sec_spec_2":           "sec_spec_2",
	"Sec_spec_3":           "sec_spec_3",
	"Sec_spec_4":           "sec_spec_4",
	"Sec_spec_all":         "sec_spec_all",
	"Org_nm":               "organization_name",
	"Org_PAC_ID":           "group_pac_id",
	"num_org_mem":          "number_of_group_members",
	"adr_ln_1":             "address_line_1",
	"adr_ln_2":             "address_line_2",
	"ln_2_sprs":            "address_line_2_suppression",
	"cty":                  "city",
	"st":                   "state",
	"ZIP Code":             "zip_code",
	"Telephone Number":     "phone_number",

	// Revised Doctors and Clinicians headers.
	"Suffix":                                "suffix",
	"Gender":                                "gender",
	"Credential":                            "credential",
	"Medical school":                        "med_school",
	"Medical School":                        "med_school",
	"Graduation year":                       "grad_year",
	"Graduation Year":                       "grad_year",
	"Primary specialty":                     "pri_spec",
	"Primary Specialty":                     "pri_spec",
	"Secondary specialty 1":                 "sec_spec_1",
	"Secondary Specialty 1":                 "sec_spec_1",
	"Secondary specialty 2":                 "sec_spec_2",
	"Secondary Specialty 2":                 "sec_spec_2",
	"Secondary specialty 3":                 "sec_spec_3",
	"Secondary Specialty 3":                 "sec_spec_3",
	"Secondary specialty 4":                 "sec_spec_4",
	"Secondary Specialty 4":                 "sec_spec_4",
	"All secondary specialties":             "sec_spec_all",
	"All Secondary Specialties":             "sec_spec_all",
	"Telehealth":                            "telehealth",
	"Facility Name":                         "organization_name",
	"Organization legal name":               "organization_name",
	"Group PAC ID":                          "group_pac_id",
	"Individual PAC ID":                     "pac_id",
	"PAC ID":                                "pac_id",
	"Clinician Enrollment ID":               "enrollment_id",
	"Number of Group Members":               "number_of_group_members",
	"Number of group members":               "number_of_group_members",
	"Line 1 Street Address":                 "address_line_1",
	"Address Line 1":                        "address_line_1",
	"Line 2 Street Address":                 "address_line_2",
	"Address Line 2":                        "address_line_2",
	"City":                                  "city",
	"City Town":                             "city",
	"City/Town":                             "city",
	"State":                                 "state",
	"ZIP":                                   "zip_code",
	"Phone Number":                          "phone_number",
	"Clinician accepts Medicare Assignment": "medicare_assignment",
	"Clinician accepts Medicare assignment": "medicare_assignment",
	"Group accepts Medicare Assignment":     "group_medicare_assignment",
	"Group accepts Medicare assignment":     "group_medicare_assignment",
	"Address ID":                            "address_id",

	// Legacy short codes, as written by older catalog builds.
	"lst_nm":        "last_name",
	"frst_nm":       "first_name",
	"mid_nm":        "middle_name",
	"cred":          "credential",
	"med_sch":       "med_school",
	"grd_yr":        "grad_year",
	"telehlth":      "telehealth",
	"Is_Telehealth": "telehealth",
	"org_nm":        "organization_name",
	"org_pac_id":    "group_pac_id",
	"ind_pac_id":    "pac_id",
	"ind_enrl_id":   "enrollment_id",
	"zip":           "zip_code",
	"phn_numbr":     "phone_number",
	"phone":         "phone_number",
	"assgn":         "medicare_assignment",
	"grp_assgn":     "group_medicare_assignment",
	"adrs_id":       "address_id",
}

// Rename returns the canonical name of a source header, or the header
// itself when the schema does not know it.
func Rename(header string) string {
	if canon, ok := renames[header]; ok {
		return canon
	}
	return header
}

// RenameAll renames headers, keeping the first occurrence of each
// canonical name in order.
func RenameAll(headers []string) []string {
	seen := make(map[string]bool, len(headers))
	out := make([]string, 0, len(headers))
	for _, h := range headers {
		name := Rename(h)
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}
