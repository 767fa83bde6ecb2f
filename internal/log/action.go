package log

type Action = string

const (
	CreateLookup     Action = "CreateLookup"
	GetLookup               = "GetLookup"
	UpdateLookup            = "UpdateLookup"
	DeactivateLookup        = "DeactivateLookup"
	RestoreLookup           = "RestoreLookup"
	ListLookups             = "ListLookups"

	CreateBook        = "CreateBook"
	GetBook           = "GetBook"
	UpdateBook        = "UpdateBook"
	DeactivateBook    = "DeactivateBook"
	RestoreBook       = "RestoreBook"
	ListBooks         = "ListBooks"
	ListInactiveBooks = "ListInactiveBooks"
	ActiveStats       = "ActiveStats"

	CreateUser     = "CreateUser"
	GetUser        = "GetUser"
	UpdateUser     = "UpdateUser"
	DeactivateUser = "DeactivateUser"
	RestoreUser    = "RestoreUser"
	ListUsers      = "ListUsers"

	IssueLoan      = "IssueLoan"
	ReturnLoan     = "ReturnLoan"
	UpdateLoan     = "UpdateLoan"
	DeactivateLoan = "DeactivateLoan"
	RestoreLoan    = "RestoreLoan"
	GetLoan        = "GetLoan"
	ListLoans      = "ListLoans"

	RelayOutbox = "RelayOutbox"
)
