package rules

func NewResult(r Rule, target string, status Status, message string) Result {
	res := Result{
		RuleID: r.ID(),
		Target: target,
		Status: status,
	}
	if r.Severity() != "" {
		res.Severity = r.Severity()
	}
	if message != "" {
		res.Message = message
	}
	return res
}

func PassResult(r Rule, target string) Result {
	return NewResult(r, target, StatusPass, "")
}

func PassResultWithMessage(r Rule, target string, message string) Result {
	return NewResult(r, target, StatusPass, message)
}

func SkipResult(r Rule, target string, message string) Result {
	return NewResult(r, target, StatusSkip, message)
}

// ViolationResult reports a rule violation with the status its severity
// dictates: FAIL for MUST rules, WARN for everything else.
func ViolationResult(r Rule, target string, message string) Result {
	status := StatusWarn
	if r.Severity() == SeverityMust {
		status = StatusFail
	}
	return NewResult(r, target, status, message)
}

func ViolationResultWithFile(r Rule, target string, message string, file string, line int) Result {
	res := ViolationResult(r, target, message)
	res.File = file
	res.Line = line
	return res
}

func ViolationResultWithEvidence(r Rule, target string, message string, evidence map[string]string) Result {
	res := ViolationResult(r, target, message)
	res.Evidence = evidence
	return res
}
