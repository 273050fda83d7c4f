package rules

import (
	"github.com/faultline-dev/faultline/internal/astmodel"
	"github.com/faultline-dev/faultline/internal/config"
	"github.com/faultline-dev/faultline/internal/escape"
	"github.com/faultline-dev/faultline/internal/hotpath"
)

func newContext() *Context {
	layout := astmodel.NewFixtureLayoutOracle()
	return &Context{
		Layout: layout,
		Escape: escape.NewOracle(layout),
		Hot:    hotpath.New([]string{"*"}, nil),
		Config: config.Defaults(),
	}
}

func coldContext() *Context {
	layout := astmodel.NewFixtureLayoutOracle()
	return &Context{
		Layout: layout,
		Escape: escape.NewOracle(layout),
		Hot:    hotpath.New(nil, nil),
		Config: config.Defaults(),
	}
}

func scalar(name string, size int64, atomic bool) *astmodel.FixtureType {
	return &astmodel.FixtureType{TypeKind: astmodel.KindScalar, Name: name, Size: size, AtomicQual: atomic}
}
