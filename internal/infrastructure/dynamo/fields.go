package dynamo

// Attribute names in the download-queue table.
const (
	fieldID           = "id"
	fieldCreationTime = "creationTime"
	fieldURL          = "url"
	fieldError        = "error"
	fieldLastAttempt  = "lastAttempt"
)
