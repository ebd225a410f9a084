// Package api is the Main API client (§6): typed requests to the remote
// user/datastore API, grounded on the teacher's pkg/cinemeta.Client shape
// (base URL + *http.Client with timeout + structured error wrapping),
// generalized from a read-only GET client into a POST
// {type:<Method>,...fields} JSON client.
package api

import (
	"time"

	"github.com/stremio-core-go/runtime/internal/model"
)

// Method names the Main API operates on (§6).
type Method string

const (
	MethodLogin             Method = "Login"
	MethodRegister          Method = "Register"
	MethodLogout            Method = "Logout"
	MethodAddonCollectionGet Method = "AddonCollectionGet"
	MethodAddonCollectionSet Method = "AddonCollectionSet"
	MethodDatastoreGet       Method = "DatastoreGet"
	MethodDatastoreMeta      Method = "DatastoreMeta"
	MethodDatastorePut       Method = "DatastorePut"
)

// LibraryCollectionName is the datastore collection this runtime syncs
// (§4.6.1).
const LibraryCollectionName = "libraryItem"

// LoginRequest is the body of a Login call.
type LoginRequest struct {
	Type     Method `json:"type"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the body of a Register call.
type RegisterRequest struct {
	Type     Method `json:"type"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is the successful result of Login/Register.
type AuthResponse struct {
	Key  string     `json:"authKey"`
	User model.User `json:"user"`
}

// AddonCollectionGetRequest fetches the addon collection for an auth key.
type AddonCollectionGetRequest struct {
	Type    Method `json:"type"`
	AuthKey string `json:"authKey"`
}

// AddonCollectionGetResponse is the successful result.
type AddonCollectionGetResponse struct {
	Addons []model.Descriptor `json:"addons"`
}

// AddonCollectionSetRequest pushes a new addon collection (§4.6 "Addon
// installation" side effect, §8 "Install-with-user" scenario).
type AddonCollectionSetRequest struct {
	Type    Method              `json:"type"`
	AuthKey string              `json:"authKey"`
	Addons  []model.Descriptor  `json:"addons"`
}

// SuccessResponse is the generic ack shape for mutating calls.
type SuccessResponse struct {
	Success bool `json:"success"`
}

// DatastoreCommand is the tagged command carried by a DatastoreRequest
// (§4.6.1, §6).
type DatastoreCommand struct {
	// Exactly one of the following is populated, matching the Rust source's
	// tagged enum; Go has no sum types so this is the idiomatic encoding
	// used throughout the teacher's request/response pairs.
	Meta    *struct{}              `json:"-"`
	Get     *DatastoreCommandGet   `json:"-"`
	Put     *DatastoreCommandPut   `json:"-"`
}

// DatastoreCommandGet is the Get{ids, all} command.
type DatastoreCommandGet struct {
	IDs []string `json:"ids"`
	All bool     `json:"all"`
}

// DatastoreCommandPut is the Put{changes} command.
type DatastoreCommandPut struct {
	Changes []model.LibraryItem `json:"changes"`
}

// DatastoreMetaCommand builds a Meta{} command.
func DatastoreMetaCommand() DatastoreCommand { return DatastoreCommand{Meta: &struct{}{}} }

// DatastoreGetCommand builds a Get{ids, all} command.
func DatastoreGetCommand(ids []string, all bool) DatastoreCommand {
	return DatastoreCommand{Get: &DatastoreCommandGet{IDs: ids, All: all}}
}

// DatastorePutCommand builds a Put{changes} command.
func DatastorePutCommand(changes []model.LibraryItem) DatastoreCommand {
	return DatastoreCommand{Put: &DatastoreCommandPut{Changes: changes}}
}

// DatastoreRequest identifies one datastore call; it doubles as the
// correlation key for LibrarySyncPlanResult / LibraryPullResult (§4.2, §4.6.1).
type DatastoreRequest struct {
	AuthKey    string
	Collection string
	Command    DatastoreCommand
}

// LibraryItemModified is the (id, mtime) pair returned by a Meta{} command
// (§4.6.1 step 2).
type LibraryItemModified struct {
	ID    string
	Mtime time.Time
}
