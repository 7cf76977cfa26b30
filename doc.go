// Package restro is the command core of a multi-tenant restaurant dashboard.
//
// Restro is a library. Embed it in an HTTP service, a CLI or a forge
// application; every tenant's data lives in one canonical store and every
// command reads and writes through it. It provides:
//
//   - Plan entitlements with a Pro trial for new tenants
//   - Order intake from a cart, with in-place editing of pending orders
//   - Ingredient stock levels with critical alerts
//   - Table reservations
//   - CSV export of orders, menu and stock
//   - Read-only demo tenants seeded with sample data
//
// # Quick Start
//
//	import (
//	    "github.com/xraph/restro"
//	    "github.com/xraph/restro/store/memory"
//	)
//
//	eng := restro.New(memory.New())
//	if err := eng.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer eng.Stop()
//
//	t, err := eng.ProvisionTenant(ctx, "Villa Gourmet")
//	sess, err := eng.OpenSession(ctx, t.ID)
//
// # Sessions
//
// Tenant-wide commands (provisioning, plan choice, billing events) live on
// the Engine. Day-to-day commands run through a Session, which holds the
// cart, the order being edited and pending confirmations:
//
//	sess.AddToCart(ctx, productID)
//	sess.UpdateNote(productID, "sem cebola")
//	o, err := sess.Submit(ctx, restro.SubmitRequest{
//	    Type:    order.TypeDineIn,
//	    TableID: tableID,
//	})
//
// Destructive commands return a confirm.Pending token and only act once
// the token is passed to Confirm:
//
//	p, err := sess.RequestReject(ctx, o.ID)
//	err = sess.Confirm(ctx, p.Token)
//
// # Access rules
//
// Demo tenants are read-only: every mutation fails with ErrReadOnly and
// leaves the store untouched. Once a trial has expired, reads fail with
// ErrTrialExpired and mutations are refused until a plan is chosen with
// ChoosePlan. Plan-gated features (delivery, stock alerts, export) return
// a PermissionError naming the required plan. Kind maps any returned error
// onto a stable ErrorKind for presentation.
//
// # Money
//
// Amounts are integers in the smallest currency unit (centavos for MZN).
// Stock quantities are decimals.
//
// # TypeID
//
// All entities use TypeID identifiers:
//
//	tnt_01h2xcejqtf2nbrexx3vqjhp41   // Tenant ID
//	ord_01h2xcejqtf2nbrexx3vqjhp41   // Order ID
//	ing_01h455vb4pex5vsknk084sn02q   // Ingredient ID
package restro
