package app

import "context"

func (s Service) Dependencies(ctx context.Context, req DependenciesRequest) (DependenciesResult, error) {
	pkg, deps, err := s.locate(ctx, req.GemSource)
	if err != nil {
		return DependenciesResult{}, err
	}
	return DependenciesResult{
		Gem:          pkg.Name(),
		Version:      pkg.Version(),
		CookbookName: pkg.CookbookName(),
		Dependencies: deps,
	}, nil
}
