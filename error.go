package paretoq

import "errors"

var (
	ErrInvalidParameter = errors.New("tree parameters must be at least 8")
	ErrKeysUnsorted     = errors.New("batch must be sorted by key in strictly ascending order")
	ErrDeleteAbsentKey  = errors.New("batch deletes a key that is not in the tree")
	ErrInsertPresentKey = errors.New("batch inserts a key that is already in the tree")

	ErrVerifyLeafOrder     = errors.New("verify: leaf keys not strictly ascending")
	ErrVerifyRouter        = errors.New("verify: router does not match subtree maximum")
	ErrVerifyWeight        = errors.New("verify: subtree weight out of bounds")
	ErrVerifyWeightCount   = errors.New("verify: subtree weight does not match key count")
	ErrVerifyLevel         = errors.New("verify: child level mismatch")
	ErrVerifyItemCount     = errors.New("verify: item count does not match tree contents")
	ErrVerifyNodeCount     = errors.New("verify: node statistics do not match tree structure")
	ErrVerifyMinimum       = errors.New("verify: slot minimum does not match subtree contents")
	ErrVerifyKeySeparation = errors.New("verify: subtree keys cross router boundary")
)
