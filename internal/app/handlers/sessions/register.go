package sessions

import (
	"gardiens/internal/app/commands"
	"gardiens/internal/app/dto"
	"gardiens/internal/app/policies"
	"gardiens/internal/app/queries"
)

func RegisterCommands(bus *commands.InMemoryBus, deps Deps, source policies.ListingSource) {
	commands.Register[OpenCommand, dto.SessionView](bus, &OpenHandler{Deps: deps})
	commands.Register[NavigateCommand, dto.SessionView](bus, &NavigateHandler{Deps: deps})
	commands.Register[BackCommand, dto.SessionView](bus, &BackHandler{Deps: deps})
	commands.Register[HomeCommand, dto.SessionView](bus, &HomeHandler{Deps: deps})
	commands.Register[UpdateCriteriaCommand, dto.SearchResult](bus, &UpdateCriteriaHandler{Deps: deps})
	commands.Register[RotateCredentialCommand, dto.SessionView](bus, &RotateCredentialHandler{Deps: deps})
	commands.Register[RefreshCommand, dto.RefreshResult](bus, &RefreshHandler{Deps: deps})
	commands.Register[ToggleFavoriteCommand, dto.FavoriteResult](bus, &ToggleFavoriteHandler{Deps: deps, Source: source})
	commands.Register[CloseCommand, struct{}](bus, &CloseHandler{Deps: deps})
}

func RegisterQueries(bus *queries.InMemoryBus, deps Deps) {
	queries.Register[GetQuery, dto.SessionView](bus, &GetHandler{Deps: deps})
	queries.Register[ResultsQuery, dto.SearchResult](bus, &ResultsHandler{Deps: deps})
}
