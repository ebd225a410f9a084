// Package app wires the Ctx and MetaDetails models into the single root
// runtime.Model the dispatch loop drives (§2 "the runtime applies it to the
// root model, which delegates to sub-models"). Grounded on the teacher's
// addon.go, which composes several independent route groups (manifest,
// resource, health) behind one fiber.App the same way Root composes two
// independent sub-models behind one Update.
package app

import (
	"go.uber.org/zap"

	"github.com/stremio-core-go/runtime/internal/ctx"
	"github.com/stremio-core-go/runtime/internal/metadetails"
	"github.com/stremio-core-go/runtime/internal/runtime"
)

// ctxMsgNames lists every Msg.Name the Ctx model owns (§4.6).
var ctxMsgNames = map[string]bool{
	"Login": true, "Register": true, "Logout": true,
	"InstallAddon": true, "UninstallAddon": true,
	"AddToLibrary": true, "RemoveFromLibrary": true, "RewindLibraryItem": true,
	"SyncLibraryWithAPI": true, "CtxAuthResult": true, "UpdateLibraryItem": true,
	"LibrarySyncPlanResult": true, "LibraryPullResult": true,
}

// metaDetailsMsgNames lists every Msg.Name the MetaDetails model owns (§4.7).
var metaDetailsMsgNames = map[string]bool{
	"Load": true, "Unload": true, "MarkAsWatched": true, "MarkVideoAsWatched": true,
	"ResourceRequestResult": true, "ProfileChanged": true,
}

// Root is the single runtime.Model the dispatch loop drives. Both
// sub-models see LibraryChanged, since MetaDetails' library_item/watched
// derivation depends on Ctx's library bucket (§4.6.2, §4.7 step 6-7).
type Root struct {
	Ctx         *ctx.Model
	MetaDetails *metadetails.Model
	logger      *zap.Logger
}

// New wires a Root around an already-constructed Ctx and MetaDetails pair.
func New(ctxModel *ctx.Model, metaDetailsModel *metadetails.Model, logger *zap.Logger) *Root {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Root{Ctx: ctxModel, MetaDetails: metaDetailsModel, logger: logger}
}

var _ runtime.Model = (*Root)(nil)

// Update implements runtime.Model, routing each Msg to the sub-model(s) that
// own it (§2, §4.2 step 1).
func (r *Root) Update(msg runtime.Msg) runtime.Effects {
	switch {
	case msg.Name == "LibraryChanged":
		return runtime.Join(r.Ctx.Update(msg), r.MetaDetails.Update(msg))
	case ctxMsgNames[msg.Name]:
		return r.Ctx.Update(msg)
	case metaDetailsMsgNames[msg.Name]:
		return r.MetaDetails.Update(msg)
	case msg.Name == "Error":
		r.logger.Warn("model error event", zap.Any("payload", msg.Payload))
		return runtime.Unchanged()
	default:
		r.logger.Debug("unrouted message", zap.String("kind", msg.Kind.String()), zap.String("name", msg.Name))
		return runtime.Unchanged()
	}
}
