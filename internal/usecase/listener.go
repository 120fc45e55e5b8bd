package usecase

import "flightdesk-service/internal/domain/entity"

// Listener receives the events a ListDetailController emits. All methods
// are called from the controller goroutine and must not block for long.
type Listener interface {
	CollectionChanged(collection entity.Collection)
	FilteredViewChanged(view entity.Collection)
	FaultOccurred(fault *entity.Fault)
	NavigationRequested(nav entity.Navigation)
	FormCleared()
}

// ListenerFuncs adapts optional functions to the Listener interface
type ListenerFuncs struct {
	OnCollectionChanged   func(entity.Collection)
	OnFilteredViewChanged func(entity.Collection)
	OnFaultOccurred       func(*entity.Fault)
	OnNavigationRequested func(entity.Navigation)
	OnFormCleared         func()
}

func (l ListenerFuncs) CollectionChanged(c entity.Collection) {
	if l.OnCollectionChanged != nil {
		l.OnCollectionChanged(c)
	}
}

func (l ListenerFuncs) FilteredViewChanged(v entity.Collection) {
	if l.OnFilteredViewChanged != nil {
		l.OnFilteredViewChanged(v)
	}
}

func (l ListenerFuncs) FaultOccurred(f *entity.Fault) {
	if l.OnFaultOccurred != nil {
		l.OnFaultOccurred(f)
	}
}

func (l ListenerFuncs) NavigationRequested(n entity.Navigation) {
	if l.OnNavigationRequested != nil {
		l.OnNavigationRequested(n)
	}
}

func (l ListenerFuncs) FormCleared() {
	if l.OnFormCleared != nil {
		l.OnFormCleared()
	}
}
