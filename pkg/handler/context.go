package handler

// DI for all handlers alike.

import (
	mydb "github.com/yumyai/snpview/pkg/db"
	"github.com/yumyai/snpview/pkg/session"
)

type AppContext struct {
	RefDB    *mydb.RefDB
	Sessions *session.Manager
}
