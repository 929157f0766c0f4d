// Package agent implements the LLM-driven browser agent that visits a job
// posting, plans how to fill its application form from a candidate's
// profile data, applies the plan with a real browser, and reports a
// structured outcome.
//
// The package is split along a planning/execution seam: the planner turns
// the page's form inventory and the profile field bag into a declarative
// fill plan via the Gemini API, and the filler applies that plan with
// playwright. The seam keeps the LLM interaction and the prompt/plan
// formats testable without a browser.
package agent
