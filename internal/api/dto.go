package api

// AssetSummary describes one catalog entry.
type AssetSummary struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Size int    `json:"size,omitempty"`
}

// AssetList is the catalog listing response.
type AssetList struct {
	Game   string         `json:"game"`
	Count  int            `json:"count"`
	Assets []AssetSummary `json:"assets"`
}

// DependencyRecord is one extracted reference.
type DependencyRecord struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// DependencyReport is the result of a dependency walk. ReportID is a
// fresh identifier per request so results can be correlated in logs.
type DependencyReport struct {
	ReportID     string             `json:"report_id"`
	Asset        AssetSummary       `json:"asset"`
	Game         string             `json:"game"`
	Recursive    bool               `json:"recursive"`
	Container    bool               `json:"container"`
	PlayerActor  bool               `json:"player_actor"`
	Count        int                `json:"count"`
	Dependencies []DependencyRecord `json:"dependencies"`
}

// ResponseError is the error payload envelope.
type ResponseError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
	Param   string `json:"param,omitempty"`
}
