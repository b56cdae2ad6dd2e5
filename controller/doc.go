// Package controller provides a generic watch/reconcile loop for a single
// class of Kubernetes resources, dispatching change notifications to a
// user-supplied reconciler and automatically recovering from stream
// failures.
//
// # Basic Usage
//
// Declare the resource type's descriptor metadata, create a stream client,
// and run the controller:
//
//	descriptor.Register[*corev1.ConfigMap](descriptor.Metadata{
//	    Version: "v1",
//	    Kind:    "ConfigMap",
//	})
//
//	client := stream.NewDynamicClient[*corev1.ConfigMap](dynamic.NewForConfigOrDie(config))
//
//	ctrl := controller.New(client, controller.ReconcilerFuncs[*corev1.ConfigMap]{
//	    ReconcileFunc: func(ctx context.Context, cm *corev1.ConfigMap) error {
//	        // called for added and modified configmaps
//	        return nil
//	    },
//	    DeleteFunc: func(ctx context.Context, cm *corev1.ConfigMap) error {
//	        // called for deleted configmaps
//	        return nil
//	    },
//	}, nil)
//
//	ctrl.Run(ctx)
//
// # Reconciler Interface
//
// For reconcilers with dependencies, implement the Reconciler interface:
//
//	type ConfigReconciler struct {
//	    // dependencies
//	}
//
//	func (r *ConfigReconciler) ReconcileKind(ctx context.Context, cm *corev1.ConfigMap) error {
//	    return nil
//	}
//
//	func (r *ConfigReconciler) DeleteKind(ctx context.Context, cm *corev1.ConfigMap) error {
//	    return nil
//	}
//
// A reconciler that also implements Initializer gets a one-time setup
// call before watching begins; an Initialize error keeps the controller
// from ever watching.
//
// # Failure Handling
//
// The loop runs for the lifetime of the host. A watch stream that ends is
// re-established immediately; a list/watch request that fails at the
// transport layer is retried after a fixed back-off (3 seconds unless
// configured). Only descriptor resolution and the startup hook can fail
// the controller permanently.
//
// Notifications are dispatched strictly in order, one hook invocation at
// a time. A hook error is logged and the stream continues; it never tears
// the session down.
//
// # Lifecycle
//
// Run blocks until its context is cancelled, which suits errgroup-style
// hosts (see Manager). Hosts that drive components through explicit
// start/stop calls can use Start and Stop instead. Cancellation is
// observed between events and at back-off delays; an in-flight hook
// invocation always runs to completion.
package controller
