package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/chainguard-dev/clog"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/goncalo-oliveira/kubernetes-operator-sdk/controller"
	"github.com/goncalo-oliveira/kubernetes-operator-sdk/descriptor"
	"github.com/goncalo-oliveira/kubernetes-operator-sdk/stream"
)

var (
	namespace = flag.String("namespace", "", "namespace to watch (empty for cluster-wide)")
	selector  = flag.String("selector", "", "label selector to filter watched configmaps")
)

func main() {
	flag.Parse()

	config, err := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(
		clientcmd.NewDefaultClientConfigLoadingRules(),
		&clientcmd.ConfigOverrides{}).ClientConfig()
	if err != nil {
		log.Fatalf("ClientConfig: %v", err)
	}

	descriptor.Register[*corev1.ConfigMap](descriptor.Metadata{
		Version: "v1",
		Kind:    "ConfigMap",
	})

	client := stream.NewDynamicClient[*corev1.ConfigMap](dynamic.NewForConfigOrDie(config))

	ctrl := controller.New(client, controller.ReconcilerFuncs[*corev1.ConfigMap]{
		ReconcileFunc: func(ctx context.Context, cm *corev1.ConfigMap) error {
			clog.InfoContext(ctx, "reconciling configmap",
				"namespace", cm.Namespace,
				"name", cm.Name,
				"keys", len(cm.Data))
			return nil
		},
		DeleteFunc: func(ctx context.Context, cm *corev1.ConfigMap) error {
			clog.InfoContext(ctx, "configmap deleted",
				"namespace", cm.Namespace,
				"name", cm.Name)
			return nil
		},
	}, &controller.Options{
		Namespace:     *namespace,
		LabelSelector: *selector,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := ctrl.Run(ctx); err != nil {
		log.Fatalf("controller: %v", err)
	}
}
