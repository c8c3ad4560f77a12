package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/crmkeeper/internal/common"
	"github.com/dmitrijs2005/crmkeeper/internal/dbx"
	"github.com/dmitrijs2005/crmkeeper/internal/logging"
	"github.com/dmitrijs2005/crmkeeper/internal/server/audit"
	"github.com/dmitrijs2005/crmkeeper/internal/server/models"
	"github.com/dmitrijs2005/crmkeeper/internal/server/repositories/repomanager"
)

// repoLabeler resolves audit reference labels inside the mutating
// transaction.
type repoLabeler struct {
	rm     repomanager.RepositoryManager
	db     dbx.DBTX
	orgID  string
	cipher audit.Cipher
	logger logging.Logger
}

// Label returns the display name of a referenced record. A name that cannot
// be decrypted yields the empty label, which callers render as the id.
func (l *repoLabeler) Label(ctx context.Context, kind models.EntityType, id string) (string, error) {
	var (
		name string
		err  error
	)
	switch kind {
	case models.EntityUser:
		var u *models.User
		if u, err = l.rm.Users(l.db).FindByID(ctx, l.orgID, id); err == nil {
			name, err = audit.Users.Display(l.cipher, u)
			err = l.degrade(ctx, kind, id, err)
		}
	case models.EntityContact:
		var c *models.Contact
		if c, err = l.rm.Contacts(l.db).FindByID(ctx, l.orgID, id); err == nil {
			name, err = audit.Contacts.Display(l.cipher, c)
			err = l.degrade(ctx, kind, id, err)
		}
	case models.EntityLead:
		var ld *models.Lead
		if ld, err = l.rm.Leads(l.db).FindByID(ctx, l.orgID, id); err == nil {
			name, err = audit.Leads.Display(l.cipher, ld)
			err = l.degrade(ctx, kind, id, err)
		}
	case models.EntityAccount:
		var a *models.Account
		if a, err = l.rm.Accounts(l.db).FindByID(ctx, l.orgID, id); err == nil {
			name = a.Name
		}
	case models.EntityOpportunity:
		var o *models.Opportunity
		if o, err = l.rm.Opportunities(l.db).FindByID(ctx, l.orgID, id); err == nil {
			name = o.Name
		}
	default:
		return "", fmt.Errorf("%w: %q", common.ErrorUnknownEntityType, kind)
	}
	return name, err
}

func (l *repoLabeler) degrade(ctx context.Context, kind models.EntityType, id string, err error) error {
	if err != nil {
		l.logger.Warn(ctx, "reference label undecryptable", "entity", kind, "id", id)
	}
	return nil
}
