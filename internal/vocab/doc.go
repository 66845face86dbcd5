// Package vocab holds the permissible target classes and validates goal
// requests against them.
//
// A [Vocabulary] is built once at startup and never mutated afterwards. It is
// injected into a [Validator], which normalises a requested class name and
// either returns a [Goal] or rejects the request:
//
//	v := vocab.NewValidator(vocab.COCO())
//	goal, err := v.Accept(" Dog ")  // goal.ClassID == 16
//	_, err = v.Accept("dragon")     // errors.Is(err, vocab.ErrUnknownClass)
package vocab
