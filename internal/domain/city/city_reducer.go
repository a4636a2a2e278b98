package city

import (
	"fmt"
	"slices"

	"github.com/FACorreiaa/worldwise-api/internal/types"
)

// Messages stored in State.Error when an operation fails.
const (
	ErrMsgLoadCities = "There was an error loading the cities..."
	ErrMsgLoadCity   = "There was an error loading the city..."
	ErrMsgCreateCity = "There was an error creating the city..."
	ErrMsgDeleteCity = "There was an error deleting the city..."
)

// State is the snapshot held by the container.
type State struct {
	Cities      []types.City `json:"cities"`
	CurrentCity *types.City  `json:"currentCity"`
	IsLoading   bool         `json:"isLoading"`
	Error       string       `json:"error"`
}

// InitialState is the state a freshly mounted container starts from.
func InitialState() State {
	return State{Cities: []types.City{}}
}

// clone returns a copy that shares no memory with s.
func (s State) clone() State {
	out := s
	out.Cities = slices.Clone(s.Cities)
	if out.Cities == nil {
		out.Cities = []types.City{}
	}
	if s.CurrentCity != nil {
		c := *s.CurrentCity
		out.CurrentCity = &c
	}
	return out
}

// Action is the closed set of transitions understood by Reduce.
type Action interface {
	actionType() string
}

// Loading starts an operation.
type Loading struct{}

// CitiesLoaded replaces the city list.
type CitiesLoaded struct{ Cities []types.City }

// CurrentCityLoaded replaces the selected city.
type CurrentCityLoaded struct{ City types.City }

// CityCreated appends a stored city and selects it.
type CityCreated struct{ City types.City }

// CityDeleted removes a city and clears the selection.
type CityDeleted struct{ ID types.CityID }

// Rejected ends an operation with an error message.
type Rejected struct{ Message string }

func (Loading) actionType() string           { return "loading" }
func (CitiesLoaded) actionType() string      { return "cities/loaded" }
func (CurrentCityLoaded) actionType() string { return "currentCity/loaded" }
func (CityCreated) actionType() string       { return "city/created" }
func (CityDeleted) actionType() string       { return "city/deleted" }
func (Rejected) actionType() string          { return "rejected" }

// Reduce returns the state that follows prev after action. It never mutates prev.
// An action outside the set declared in this file is a programming error and panics.
func Reduce(prev State, action Action) State {
	next := prev.clone()

	switch a := action.(type) {
	case Loading:
		next.IsLoading = true
	case CitiesLoaded:
		next.IsLoading = false
		next.Cities = slices.Clone(a.Cities)
		if next.Cities == nil {
			next.Cities = []types.City{}
		}
	case CurrentCityLoaded:
		next.IsLoading = false
		c := a.City
		next.CurrentCity = &c
	case CityCreated:
		next.IsLoading = false
		next.Cities = append(next.Cities, a.City)
		c := a.City
		next.CurrentCity = &c
	case CityDeleted:
		next.IsLoading = false
		next.Cities = slices.DeleteFunc(next.Cities, func(c types.City) bool {
			return c.ID == a.ID
		})
		next.CurrentCity = nil
	case Rejected:
		next.IsLoading = false
		next.Error = a.Message
	default:
		panic(fmt.Sprintf("city: unknown action type %T", action))
	}

	return next
}
