package handler

// --- Request types ---

type authorizeRequest struct {
	Login string `json:"login" validate:"required"`
	HWID  string `json:"hwid"  validate:"required"`
}

type logoutRequest struct {
	Login string `json:"login" validate:"required"`
}

// Minutes is a pointer so an absent field is distinguishable from an explicit
// zero: zero minutes is a legal no-op deduction, a missing field is not.
type consumeRequest struct {
	Login   string `json:"login"   validate:"required"`
	HWID    string `json:"hwid"    validate:"required"`
	Minutes *int64 `json:"minutes" validate:"required,gte=0"`
}

// setTimeRequest deliberately allows negative minutes: set-time is the
// administrative override and applies whatever value the operator supplies.
type setTimeRequest struct {
	Login   string `json:"login"   validate:"required"`
	HWID    string `json:"hwid"    validate:"required"`
	Minutes *int64 `json:"minutes" validate:"required"`
}

// --- Response types ---

type balanceResponse struct {
	Status   string `json:"status"`
	TimeLeft int64  `json:"timeLeft"`
}

type setTimeResponse struct {
	Status   string `json:"status"`
	Login    string `json:"login"`
	TimeLeft int64  `json:"timeLeft"`
}

type statusResponse struct {
	Status string `json:"status"`
}

type accountResponse struct {
	Login    string `json:"login"`
	HWID     string `json:"hwid"`
	TimeLeft int64  `json:"timeLeft"`
}

type sessionsResponse struct {
	Count  int      `json:"count"`
	Logins []string `json:"logins"`
}
