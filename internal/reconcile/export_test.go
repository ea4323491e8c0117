package reconcile

// SetRemove replaces the artifact removal used by dry runs.
func SetRemove(r *Reconciler, fn func(string) error) { r.remove = fn }
