package hkaccessory

import "strconv"

// HAPStatus is a HAP protocol status code returned to a controller.
// Every failure of a GET or SET request resolves to exactly one of them.
//
// HAPStatus implements error so handlers can return a code directly:
//
//	return nil, hkaccessory.StatusResourceBusy
type HAPStatus int

const (
	StatusSuccess                     HAPStatus = 0
	StatusInsufficientPrivileges      HAPStatus = -70401
	StatusServiceCommunicationFailure HAPStatus = -70402
	StatusResourceBusy                HAPStatus = -70403
	StatusReadOnlyCharacteristic      HAPStatus = -70404
	StatusWriteOnlyCharacteristic     HAPStatus = -70405
	StatusNotificationNotSupported    HAPStatus = -70406
	StatusOutOfResource               HAPStatus = -70407
	StatusOperationTimedOut           HAPStatus = -70408
	StatusResourceDoesNotExist        HAPStatus = -70409
	StatusInvalidValueInRequest       HAPStatus = -70410
	StatusInsufficientAuthorization   HAPStatus = -70411
	StatusNotAllowedInCurrentState    HAPStatus = -70412
)

var statusMessages = map[HAPStatus]string{
	StatusSuccess:                     "success",
	StatusInsufficientPrivileges:      "insufficient privileges",
	StatusServiceCommunicationFailure: "service communication failure",
	StatusResourceBusy:                "resource busy",
	StatusReadOnlyCharacteristic:      "read-only characteristic",
	StatusWriteOnlyCharacteristic:     "write-only characteristic",
	StatusNotificationNotSupported:    "notification not supported",
	StatusOutOfResource:               "out of resource",
	StatusOperationTimedOut:           "operation timed out",
	StatusResourceDoesNotExist:        "resource does not exist",
	StatusInvalidValueInRequest:       "invalid value in request",
	StatusInsufficientAuthorization:   "insufficient authorization",
	StatusNotAllowedInCurrentState:    "not allowed in current state",
}

// Valid reports whether s belongs to the closed status set.
func (s HAPStatus) Valid() bool {
	_, ok := statusMessages[s]
	return ok
}

func (s HAPStatus) String() string {
	if m, ok := statusMessages[s]; ok {
		return m
	}
	return "unknown status " + strconv.Itoa(int(s))
}

func (s HAPStatus) Error() string {
	return "hap status " + strconv.Itoa(int(s)) + ": " + s.String()
}

// StatusFromCode looks up a status by its numeric code.
func StatusFromCode(code int) (HAPStatus, bool) {
	s := HAPStatus(code)
	return s, s.Valid()
}
