package skill

import "outfitpicker/internal/types"

// Request types sent by the voice platform.
const (
	RequestTypeLaunch       = "LaunchRequest"
	RequestTypeIntent       = "IntentRequest"
	RequestTypeSessionEnded = "SessionEndedRequest"
)

// Built-in and custom intent names.
const (
	IntentHelp   = "AMAZON.HelpIntent"
	IntentCancel = "AMAZON.CancelIntent"
	IntentStop   = "AMAZON.StopIntent"

	IntentGetOutfit        = "GetOutfit"
	IntentGetOutfitLongRun = "GetOutfitLongRun"
	IntentGetOutfitRace    = "GetOutfitRace"
	IntentGetOutfitWorkout = "GetOutfitWorkout"
)

// Permission scopes requested when no location is available.
var locationPermissions = []string{
	"read::alexa:device:all:address:country_and_postal_code",
	"alexa::devices:all:geolocation:read",
}

// Request is the skill invocation envelope.
type Request struct {
	Version string      `json:"version"`
	Session *Session    `json:"session,omitempty"`
	Context Context     `json:"context"`
	Request RequestBody `json:"request"`
}

// Session identifies the conversation.
type Session struct {
	SessionID   string      `json:"sessionId"`
	New         bool        `json:"new"`
	Application Application `json:"application"`
}

// Application identifies the skill the request is addressed to.
type Application struct {
	ApplicationID string `json:"applicationId"`
}

// Context carries device state. Geolocation is only present when the user
// granted the geolocation permission and the device is mobile.
type Context struct {
	System      System       `json:"System"`
	Geolocation *Geolocation `json:"Geolocation,omitempty"`
}

// System holds the credentials for calling back into the platform APIs.
type System struct {
	APIEndpoint    string             `json:"apiEndpoint"`
	APIAccessToken types.SecretString `json:"apiAccessToken"`
	Application    Application        `json:"application"`
	Device         *Device            `json:"device,omitempty"`
}

// Device is the Echo (or phone) the user spoke to.
type Device struct {
	DeviceID string `json:"deviceId"`
}

// Geolocation is the device position.
type Geolocation struct {
	Timestamp  string      `json:"timestamp,omitempty"`
	Coordinate *Coordinate `json:"coordinate,omitempty"`
}

// Coordinate is a position in degrees.
type Coordinate struct {
	LatitudeInDegrees  float64 `json:"latitudeInDegrees"`
	LongitudeInDegrees float64 `json:"longitudeInDegrees"`
	AccuracyInMeters   float64 `json:"accuracyInMeters,omitempty"`
}

// RequestBody is the typed part of the envelope.
type RequestBody struct {
	Type      string  `json:"type"`
	RequestID string  `json:"requestId"`
	Timestamp string  `json:"timestamp,omitempty"`
	Locale    string  `json:"locale,omitempty"`
	Intent    *Intent `json:"intent,omitempty"`
}

// Intent is the resolved user intent and its slots.
type Intent struct {
	Name  string          `json:"name"`
	Slots map[string]Slot `json:"slots,omitempty"`
}

// Slot is one intent parameter. Entity resolution maps synonyms onto
// canonical value ids.
type Slot struct {
	Name        string       `json:"name"`
	Value       string       `json:"value,omitempty"`
	Resolutions *Resolutions `json:"resolutions,omitempty"`
}

// Resolutions lists matches per authority (slot type).
type Resolutions struct {
	ResolutionsPerAuthority []Authority `json:"resolutionsPerAuthority"`
}

// Authority is one slot type's match result.
type Authority struct {
	Authority string          `json:"authority"`
	Status    ResolutionState `json:"status"`
	Values    []ValueWrapper  `json:"values,omitempty"`
}

// ResolutionState reports whether a slot value matched, e.g. ER_SUCCESS_MATCH.
type ResolutionState struct {
	Code string `json:"code"`
}

// ValueWrapper wraps a resolved value.
type ValueWrapper struct {
	Value ResolvedValue `json:"value"`
}

// ResolvedValue is the canonical slot value.
type ResolvedValue struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// ResolvedID returns the first resolved value id for the named slot, or ""
// when the slot is absent or did not resolve.
func (i *Intent) ResolvedID(slot string) string {
	if i == nil {
		return ""
	}
	s, ok := i.Slots[slot]
	if !ok || s.Resolutions == nil || len(s.Resolutions.ResolutionsPerAuthority) == 0 {
		return ""
	}
	values := s.Resolutions.ResolutionsPerAuthority[0].Values
	if len(values) == 0 {
		return ""
	}
	return values[0].Value.ID
}

// Response is the skill reply envelope.
type Response struct {
	Version  string       `json:"version"`
	Response ResponseBody `json:"response"`
}

// ResponseBody holds what the device says and shows.
type ResponseBody struct {
	OutputSpeech     *OutputSpeech `json:"outputSpeech,omitempty"`
	Card             *Card         `json:"card,omitempty"`
	ShouldEndSession bool          `json:"shouldEndSession"`
}

// OutputSpeech is spoken text.
type OutputSpeech struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Card is shown in the companion app.
type Card struct {
	Type        string   `json:"type"`
	Title       string   `json:"title,omitempty"`
	Content     string   `json:"content,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
}

const envelopeVersion = "1.0"

// Simple speaks text, shows it on a card titled title and ends the session.
func Simple(title, text string) Response {
	return Response{
		Version: envelopeVersion,
		Response: ResponseBody{
			OutputSpeech:     &OutputSpeech{Type: "PlainText", Text: text},
			Card:             &Card{Type: "Simple", Title: title, Content: text},
			ShouldEndSession: true,
		},
	}
}

// End closes the session silently.
func End() Response {
	return Response{Version: envelopeVersion, Response: ResponseBody{ShouldEndSession: true}}
}

// AskForLocation speaks text and shows a consent card for the location
// permissions.
func AskForLocation(text string) Response {
	return Response{
		Version: envelopeVersion,
		Response: ResponseBody{
			OutputSpeech:     &OutputSpeech{Type: "PlainText", Text: text},
			Card:             &Card{Type: "AskForPermissionsConsent", Permissions: locationPermissions},
			ShouldEndSession: true,
		},
	}
}
