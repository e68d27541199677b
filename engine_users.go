package bloombox

import (
	"context"

	"github.com/MrEthical07/bloombox/metrics"
	"github.com/MrEthical07/bloombox/users"
)

// ListUsers returns every directory record, oldest first.
func (e *Engine) ListUsers(ctx context.Context) ([]users.User, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	list, err := e.users.ListAll(ctx)
	if err != nil {
		return nil, mapUserErr(err)
	}
	if list == nil {
		list = []users.User{}
	}
	return list, nil
}

// DeleteUser removes the account identified by uid. Tokens already issued
// to it stop passing role checks because the directory lookup fails.
func (e *Engine) DeleteUser(ctx context.Context, uid string) error {
	if e == nil {
		return ErrEngineNotReady
	}
	if err := e.users.Delete(ctx, uid); err != nil {
		return mapUserErr(err)
	}
	e.metrics.Inc(metrics.EventUserDeleted)
	e.log.Info(ctx, "user deleted", "user_uid", uid)
	return nil
}
