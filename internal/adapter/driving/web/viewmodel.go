package web

import (
	vm "github.com/ericfisherdev/pike13bridge/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/pike13bridge/internal/domain/model"
)

// toLandingViewModel builds the landing page view model from the resolved
// credential. ok is false when no token is available.
func toLandingViewModel(cred model.Credential, ok bool, loginPath, fieldName string) vm.LandingViewModel {
	v := vm.LandingViewModel{
		Title:         "Pike13 Bridge",
		Authenticated: ok,
		LoginPath:     loginPath,
		FieldName:     fieldName,
		UsageHTML:     usageHTML(),
	}
	if ok {
		v.TokenSource = string(cred.Source)
	}
	return v
}
