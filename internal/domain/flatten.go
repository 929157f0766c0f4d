package domain

import (
	"fmt"
	"sort"
	"strconv"
	"time"
)

// Flatten reduces a profile snapshot to the flat string bag the form-filling
// executor consumes. The mapping is deterministic:
//
//   - scalar profile fields are always present, absent values as ""
//   - list entries expand to indexed keys (work_experience.0.title)
//   - map entries expand to dotted keys with keys visited in sorted order
//   - numbers render via strconv (floats in shortest form), booleans as
//     true/false, timestamps as RFC 3339, nil as ""
//
// The resume_ref key holds the storage reference as-is; the worker swaps in
// a resolved local path before handing the bag to the executor.
func Flatten(snap ProfileSnapshot) map[string]string {
	p := snap.Profile
	bag := map[string]string{
		"email":         snap.Email,
		"first_name":    p.FirstName,
		"last_name":     p.LastName,
		"phone":         p.Phone,
		"linkedin_url":  p.LinkedInURL,
		"portfolio_url": p.PortfolioURL,
		"resume_ref":    p.ResumeRef,
	}

	flattenValue(bag, "address", p.Address)

	for i, w := range p.WorkExperience {
		prefix := "work_experience." + strconv.Itoa(i)
		bag[prefix+".title"] = w.Title
		bag[prefix+".company"] = w.Company
		bag[prefix+".start_date"] = w.StartDate
		bag[prefix+".end_date"] = w.EndDate
		bag[prefix+".description"] = w.Description
	}

	for i, e := range p.Education {
		prefix := "education." + strconv.Itoa(i)
		bag[prefix+".institution"] = e.Institution
		bag[prefix+".degree"] = e.Degree
		bag[prefix+".field_of_study"] = e.FieldOfStudy
		bag[prefix+".start_date"] = e.StartDate
		bag[prefix+".end_date"] = e.EndDate
	}

	for i, s := range p.Skills {
		bag["skills."+strconv.Itoa(i)] = s
	}

	for _, q := range sortedKeys(p.CommonQnA) {
		bag["common_qna."+q] = p.CommonQnA[q]
	}

	return bag
}

// flattenValue writes v under key, expanding maps and slices recursively.
// Map keys are visited in sorted order so the traversal is stable.
func flattenValue(bag map[string]string, key string, v any) {
	switch val := v.(type) {
	case nil:
		// leave absent collections out of the bag entirely
	case map[string]any:
		for _, k := range sortedKeys(val) {
			flattenValue(bag, key+"."+k, val[k])
		}
	case []any:
		for i, item := range val {
			flattenValue(bag, key+"."+strconv.Itoa(i), item)
		}
	default:
		bag[key] = renderScalar(val)
	}
}

// renderScalar converts a scalar value to its canonical string form.
func renderScalar(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'g', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case time.Time:
		return val.UTC().Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", val)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
