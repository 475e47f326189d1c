// Package prep implements the shared cleaning pipeline that turns the raw
// repositories dataset into an analysis-ready frame.
//
// Every step takes a DataFrame and returns a new one; the input stays valid
// and must still be released by the caller. Steps run in this order:
//
//	ReadData -> FillMissing -> CoerceTypes -> DropUseless -> HandleLanguages
//	         -> ExtractTarget -> SelectKind -> Exclude
//
// DateFeatures and ImputeOutliers are applied by callers on demand.
package prep

import (
	"github.com/paveg/repoprep/internal/dataframe"
	"github.com/paveg/repoprep/internal/validation"
)

// Split names one of the dataset files.
type Split string

// Dataset splits.
const (
	SplitTrain Split = "train"
	SplitVal   Split = "val"
	SplitTest  Split = "test"
	SplitAll   Split = "all"
)

// Kind restricts the returned features to one family.
type Kind string

// Feature kinds. The empty Kind keeps every column.
const (
	KindCategorical Kind = "Categorical"
	KindNumerical   Kind = "Numerical"
)

// UselessMode selects which identity and constant columns DropUseless removes.
type UselessMode string

// Useless-column modes. The empty mode drops nothing.
const (
	UselessObvious UselessMode = "obvious"
	UselessAll     UselessMode = "all"
)

// Column names the pipeline touches.
const (
	ColCodeOfConduct  = "codeOfConduct"
	ColCreatedAt      = "createdAt"
	ColIsArchived     = "isArchived"
	ColIsFork         = "isFork"
	ColForkingAllowed = "forkingAllowed"
	ColParent         = "parent"
	ColLanguages      = "languages"
	ColLanguagesUsed  = "languagesUsed"
	ColLanguagesSizes = "languagesSizes"
)

// Missing-value sentinels written by FillMissing.
const (
	MissingString        = "-1"
	MissingNumber        = -1
	DefaultOutlierFactor = 3.0
)

var (
	obviousColumns = []string{"owner", "name", "nameWithOwner", "description", "pushedAt"}
	constColumns   = []string{ColIsFork, ColForkingAllowed, ColParent}
	flagColumns    = []string{ColIsArchived, ColIsFork, ColForkingAllowed}
)

// UselessColumns lists the columns DropUseless removes in mode.
func UselessColumns(mode UselessMode) []string {
	switch mode {
	case UselessObvious:
		return append([]string{}, obviousColumns...)
	case UselessAll:
		return append(append([]string{}, constColumns...), obviousColumns...)
	default:
		return nil
	}
}

// Options selects what ReadData returns.
type Options struct {
	Split       Split       // train (default), val, test or all
	Kind        Kind        // Categorical, Numerical or empty for everything
	YCol        string      // target column moved out of X when set
	Exclude     []string    // columns dropped from X last
	Fix         bool        // shorthand for Useless=all plus HandleLangs
	HandleLangs bool        // expand the languages column
	Useless     UselessMode // obvious, all or empty
}

// Validate checks the enumerated options.
func (o Options) Validate() error {
	split := o.Split
	if split == "" {
		split = SplitTrain
	}
	return validation.NewCompoundValidator(
		validation.NewOneOfValidator(string(split), "ReadData", "split",
			string(SplitTrain), string(SplitVal), string(SplitTest), string(SplitAll)),
		validation.NewOneOfValidator(string(o.Kind), "ReadData", "kind",
			"", string(KindCategorical), string(KindNumerical)),
		validation.NewOneOfValidator(string(o.Useless), "ReadData", "useless",
			"", string(UselessObvious), string(UselessAll)),
	).Validate()
}

// uselessMode resolves the mode DropUseless runs with. An explicit obvious
// mode wins over Fix.
func (o Options) uselessMode() UselessMode {
	if o.Fix && o.Useless == "" {
		return UselessAll
	}
	return o.Useless
}

// Result is the prepared feature frame and the optional target column.
type Result struct {
	X *dataframe.DataFrame
	Y dataframe.ISeries
}

// Release releases X and Y.
func (r *Result) Release() {
	if r == nil {
		return
	}
	if r.X != nil {
		r.X.Release()
	}
	if r.Y != nil {
		r.Y.Release()
	}
}
